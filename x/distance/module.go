package distance

import (
	"context"
	"encoding/json"
	"fmt"

	"cosmossdk.io/core/appmodule"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/module"
	"github.com/grpc-ecosystem/grpc-gateway/runtime"

	"github.com/paw-chain/distance/x/distance/keeper"
	"github.com/paw-chain/distance/x/distance/types"
)

var (
	_ module.AppModule           = AppModule{}
	_ module.AppModuleBasic      = AppModuleBasic{}
	_ module.HasGenesis          = AppModule{}
	_ module.HasInvariants       = AppModule{}
	_ module.HasConsensusVersion = AppModule{}
	_ appmodule.HasEndBlocker    = AppModule{}
)

// AppModuleBasic defines the basic application module for the distance module.
type AppModuleBasic struct{}

// Name returns the distance module's name.
func (AppModuleBasic) Name() string {
	return types.ModuleName
}

// RegisterLegacyAminoCodec is a no-op: distance messages are not amino-signed.
func (AppModuleBasic) RegisterLegacyAminoCodec(*codec.LegacyAmino) {}

// RegisterInterfaces is a no-op: distance messages are routed through the
// keeper's MsgServer rather than the interface registry.
func (AppModuleBasic) RegisterInterfaces(codectypes.InterfaceRegistry) {}

// RegisterGRPCGatewayRoutes is a no-op; queries are served by client/rest.
func (AppModuleBasic) RegisterGRPCGatewayRoutes(client.Context, *runtime.ServeMux) {}

// DefaultGenesis returns default genesis state as raw bytes for the distance module.
func (AppModuleBasic) DefaultGenesis(codec.JSONCodec) json.RawMessage {
	bz, err := json.Marshal(types.DefaultGenesis())
	if err != nil {
		panic(fmt.Sprintf("failed to marshal default %s genesis: %s", types.ModuleName, err))
	}
	return bz
}

// ValidateGenesis performs genesis state validation for the distance module.
func (AppModuleBasic) ValidateGenesis(_ codec.JSONCodec, _ client.TxEncodingConfig, bz json.RawMessage) error {
	var genState types.GenesisState
	if err := json.Unmarshal(bz, &genState); err != nil {
		return types.ErrInvalidGenesis.Wrapf("failed to unmarshal %s genesis state: %s", types.ModuleName, err)
	}
	return genState.Validate()
}

// AppModule implements an application module for the distance module.
type AppModule struct {
	AppModuleBasic
	keeper *keeper.Keeper
}

// NewAppModule creates a new AppModule object
func NewAppModule(keeper *keeper.Keeper) AppModule {
	return AppModule{keeper: keeper}
}

// IsAppModule implements the appmodule.AppModule interface.
func (am AppModule) IsAppModule() {}

// IsOnePerModuleType implements the appmodule.AppModule interface.
func (am AppModule) IsOnePerModuleType() {}

// RegisterInvariants registers the distance module's invariants.
func (am AppModule) RegisterInvariants(ir sdk.InvariantRegistry) {
	keeper.RegisterInvariants(ir, *am.keeper)
}

// InitGenesis performs genesis initialization for the distance module.
func (am AppModule) InitGenesis(ctx sdk.Context, _ codec.JSONCodec, data json.RawMessage) {
	var genState types.GenesisState
	if err := json.Unmarshal(data, &genState); err != nil {
		panic(fmt.Sprintf("failed to unmarshal %s genesis state: %s", types.ModuleName, err))
	}
	if err := am.keeper.InitGenesis(ctx, genState); err != nil {
		panic(fmt.Sprintf("failed to initialize %s genesis state: %s", types.ModuleName, err))
	}
}

// ExportGenesis returns the exported genesis state as raw bytes for the distance module.
func (am AppModule) ExportGenesis(ctx sdk.Context, _ codec.JSONCodec) json.RawMessage {
	genState, err := am.keeper.ExportGenesis(ctx)
	if err != nil {
		panic(fmt.Sprintf("failed to export %s genesis state: %s", types.ModuleName, err))
	}
	bz, err := json.Marshal(genState)
	if err != nil {
		panic(fmt.Sprintf("failed to marshal %s genesis state: %s", types.ModuleName, err))
	}
	return bz
}

// ConsensusVersion implements AppModule/ConsensusVersion.
func (AppModule) ConsensusVersion() uint64 { return 1 }

// EndBlock rotates the evaluation pools at period boundaries.
func (am AppModule) EndBlock(ctx context.Context) error {
	return am.keeper.EndBlocker(ctx)
}

// MsgServer returns the transaction handler backed by this module's keeper.
func (am AppModule) MsgServer() types.MsgServer {
	return keeper.NewMsgServerImpl(*am.keeper)
}

// QueryServer returns the query handler backed by this module's keeper.
func (am AppModule) QueryServer() types.QueryServer {
	return keeper.NewQueryServerImpl(*am.keeper)
}
