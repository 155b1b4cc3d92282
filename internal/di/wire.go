//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"SignalAxis/internal/usecase"
	"SignalAxis/pkg/config"
	"SignalAxis/pkg/server"
)

var infraSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideSettings,
	ProvideGuard,
	ProvideWarehouse,
	ProvideCache,
)

var usecaseSet = wire.NewSet(
	ProvideTuning,
	ProvideVerification,
	ProvideAxisDetails,
	ProvideSignalTypes,
	ProvideBinSelection,
	ProvideTomorrowSignals,
	ProvideDecisions,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		infraSet,
		ProvideDecisionStore,

		// Messaging
		ProvideKafkaProducer,
		ProvideDecisionPublisher,
		ProvideLogCollector,
		ProvideKafkaConsumer,
		ProvideDecisionEventsHandler,

		usecaseSet,

		// HTTP and application server
		ProvideHTTPHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeSnapshotBuilder wires the offline snapshot job.
func InitializeSnapshotBuilder(cfg *config.Config) (*usecase.SnapshotBuilder, func(), error) {
	wire.Build(
		infraSet,
		ProvideSnapshotBuilder,
	)
	return nil, nil, nil
}
