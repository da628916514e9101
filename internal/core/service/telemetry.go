package service

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/rl1809/warehouse-inventory/internal/core/service"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)

	transferCounter        metric.Int64Counter
	partialTransferCounter metric.Int64Counter
	stockMovementCounter   metric.Int64Counter
	lowStockCounter        metric.Int64Counter
)

func init() {
	transferCounter = counter("inventory.transfers",
		"Transfers by outcome", "{transfer}")
	partialTransferCounter = counter("inventory.transfers.partial",
		"Transfers that debited the source but failed to credit the destination", "{transfer}")
	stockMovementCounter = counter("inventory.stock.moved",
		"Units moved by transfers and completed orders", "{unit}")
	lowStockCounter = counter("inventory.low_stock.signals",
		"Low-stock signals raised by completed fulfillment orders", "{signal}")
}

func counter(name, description, unit string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		otel.Handle(err)
		c, _ = noop.NewMeterProvider().Meter(instrumentationName).Int64Counter(name)
	}
	return c
}
