package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kukacrm/internal/auth"
	"kukacrm/internal/types"
)

var userRole string

func init() {
	userAddCmd.Flags().StringVar(&userRole, "role", string(types.RoleVendedor), "admin or vendedor")
}

// runUserList prints every login.
func runUserList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	users, err := auth.NewUserAdmin(a.session, a.store).List(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), renderUsers(users))
	return nil
}

// runUserAdd creates a login from [username] [password].
func runUserAdd(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	role, err := types.ParseRole(userRole)
	if err != nil {
		return err
	}

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := auth.NewUserAdmin(a.session, a.store).Add(ctx, types.UserInput{
		Username: args[0],
		Password: args[1],
		Role:     role,
	})
	if err != nil {
		return err
	}
	logger.Info("User created", zap.String("id", u.ID), zap.String("role", string(u.Role)))
	fmt.Fprintln(cmd.OutOrStdout(), renderSuccess(fmt.Sprintf("Usuário %s criado (%s, %s)", u.Username, u.ID, u.Role.Label())))
	return nil
}

// runUserDelete removes a login by id. The bootstrap admin is refused.
func runUserDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := auth.NewUserAdmin(a.session, a.store).Delete(ctx, args[0]); err != nil {
		return err
	}
	logger.Info("User deleted", zap.String("id", args[0]))
	fmt.Fprintln(cmd.OutOrStdout(), renderSuccess("Usuário "+args[0]+" excluído"))
	return nil
}
