package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jowa-zm/jowa-ussd/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jowactl",
		Short: "jowactl - herramientas de operación de JOWA USSD",
		Long: `jowactl administra la base de datos del servicio USSD de JOWA
(migraciones, datos de ejemplo, limpieza de sesiones) y permite simular
un diálogo USSD desde la terminal.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.MigrateCmd())
	rootCmd.AddCommand(cli.SeedCmd())
	rootCmd.AddCommand(cli.SessionsCmd())
	rootCmd.AddCommand(cli.DialCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
