package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jowa-zm/jowa-ussd/internal/application/housekeeping"
	"github.com/jowa-zm/jowa-ussd/internal/infrastructure/postgres"
)

// MigrateCmd aplica las migraciones pendientes.
func MigrateCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplicar las migraciones SQL pendientes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				migrations, err := postgres.Migrations()
				if err != nil {
					return err
				}
				for _, m := range migrations {
					fmt.Fprintf(cmd.OutOrStdout(), "%04d  %s\n", m.Version, m.Name)
				}
				return nil
			}

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			applied, err := postgres.Migrate(cmd.Context(), e.pool, e.log.Component("migrate"))
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), color.New(color.FgBlue).Sprint("El esquema ya está al día"))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s versiones %v\n", color.New(color.FgGreen).Sprint("Aplicadas"), applied)
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "solo listar las migraciones embebidas")
	return cmd
}

// SeedCmd carga los datos de demostración.
func SeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Cargar trabajadores, empleadores y trabajos de ejemplo",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			created, err := postgres.Seed(cmd.Context(), e.pool)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d trabajos nuevos\n", color.New(color.FgGreen).Sprint("Seed listo:"), created)
			return nil
		},
	}
}

// SessionsCmd agrupa las operaciones sobre sesiones USSD.
func SessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Administrar sesiones USSD",
	}
	cmd.AddCommand(sessionsPruneCmd())
	return cmd
}

func sessionsPruneCmd() *cobra.Command {
	var ttlHours int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Borrar sesiones sin actividad",
		Long: `Borra las sesiones cuyo último cambio es anterior al TTL.
Por defecto usa USSD_SESSION_TTL_HOURS.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			ttl := e.cfg.USSD.SessionTTL
			if cmd.Flags().Changed("ttl-hours") {
				ttl = hours(ttlHours)
			}
			cleaner := housekeeping.NewCleaner(postgres.NewSessionRepository(e.pool), ttl, nil, e.log.Component("housekeeping"))
			n, err := cleaner.Prune(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d sesiones (TTL %s)\n", color.New(color.FgYellow).Sprint("Eliminadas"), n, ttl)
			return nil
		},
	}
	cmd.Flags().IntVar(&ttlHours, "ttl-hours", 0, "TTL en horas (sobrescribe la configuración)")
	return cmd
}
