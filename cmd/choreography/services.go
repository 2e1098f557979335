package main

import (
	"fmt"

	"github.com/Sokol111/ecommerce-choreography/internal/order"
	"github.com/Sokol111/ecommerce-choreography/internal/payment"
	"github.com/Sokol111/ecommerce-choreography/internal/user"
	"github.com/Sokol111/ecommerce-choreography/pkg/modules"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newUserServiceCmd(flags *rootFlags) *cobra.Command {
	return newServiceCmd(flags, "user-service", "Serve POST /users and publish user.created", user.NewUserModule())
}

func newOrderServiceCmd(flags *rootFlags) *cobra.Command {
	return newServiceCmd(flags, "order-service", "Turn user.created into welcome orders and publish order.created", order.NewOrderModule())
}

func newPaymentServiceCmd(flags *rootFlags) *cobra.Command {
	return newServiceCmd(flags, "payment-service", "Simulate payments for order.created and publish payment.completed", payment.NewPaymentModule())
}

func newServiceCmd(flags *rootFlags, name, short string, service fx.Option) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(serviceModules(flags, name, service))
			if err := app.Err(); err != nil {
				return fmt.Errorf("failed to build %s: %w", name, err)
			}
			app.Run()
			return nil
		},
	}
}

// serviceModules is the composition shared by the three services.
func serviceModules(flags *rootFlags, name string, service fx.Option) fx.Option {
	return modules.NewServiceModule(name, flags.configPath, service)
}
