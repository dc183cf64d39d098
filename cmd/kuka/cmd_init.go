package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kukacrm/internal/config"
	"kukacrm/internal/logging"
)

// runInit creates .kuka/config.yaml when missing and provisions the store.
func runInit(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return fmt.Errorf("failed to resolve workspace: %w", err)
	}
	out := cmd.OutOrStdout()

	path := config.DefaultPath(ws)
	if _, err := os.Stat(path); err == nil {
		logger.Info("Workspace already initialized", zap.String("config", path))
		fmt.Fprintln(out, mutedStyle.Render("Workspace já inicializado: "+path))
	} else {
		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
		logger.Info("Created config", zap.String("config", path))
	}

	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return err
	}
	logging.Boot("Workspace %s ready with %d users", ws, len(users))

	fmt.Fprintln(out, renderSuccess(fmt.Sprintf("kukacrm pronto em %s (%d usuários)", config.Dir(ws), len(users))))
	return nil
}

// runLogin authenticates and prints the principal.
func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	u, _ := a.session.Current()
	fmt.Fprintln(cmd.OutOrStdout(), renderSuccess(fmt.Sprintf("Bem-vindo, %s (%s)", u.Username, u.Role.Label())))
	return nil
}
