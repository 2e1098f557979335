package main

import (
	"testing"

	"github.com/Sokol111/ecommerce-choreography/internal/order"
	"github.com/Sokol111/ecommerce-choreography/internal/payment"
	"github.com/Sokol111/ecommerce-choreography/internal/user"
	"github.com/stretchr/testify/assert"
	"go.uber.org/fx"
)

func TestServiceModules_DependencyGraph(t *testing.T) {
	tests := []struct {
		name    string
		service fx.Option
	}{
		{name: "user-service", service: user.NewUserModule()},
		{name: "order-service", service: order.NewOrderModule()},
		{name: "payment-service", service: payment.NewPaymentModule()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, fx.ValidateApp(serviceModules(&rootFlags{}, tt.name, tt.service)))
		})
	}
}
