package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jowa-zm/jowa-ussd/internal/application/menu"
	"github.com/jowa-zm/jowa-ussd/internal/application/ussd"
	"github.com/jowa-zm/jowa-ussd/internal/infrastructure/payment"
	"github.com/jowa-zm/jowa-ussd/internal/infrastructure/postgres"
	"github.com/jowa-zm/jowa-ussd/internal/infrastructure/sms"
	"github.com/jowa-zm/jowa-ussd/pkg/validate"
)

// dispatcher lo mínimo que necesita la simulación.
type dispatcher interface {
	Dispatch(ctx context.Context, req ussd.Request) ussd.Reply
}

// DialCmd simula un diálogo USSD contra la base configurada.
func DialCmd() *cobra.Command {
	var (
		phone     string
		sessionID string
	)

	cmd := &cobra.Command{
		Use:   "dial",
		Short: "Simular una sesión USSD desde la terminal",
		Long: `Abre una sesión USSD y envía cada línea escrita como la siguiente entrada.
La sesión termina cuando el menú responde END o al cerrar la entrada (Ctrl-D).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate.PhoneNumber(phone); err != nil {
				return err
			}
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			render := menu.New(menu.Options{
				ServiceCode:  e.cfg.USSD.ServiceCode,
				SupportPhone: e.cfg.USSD.SupportPhone,
				SupportEmail: e.cfg.USSD.SupportEmail,
			})
			d := ussd.NewDispatcher(ussd.Deps{
				Tx:         postgres.NewTxRunner(e.pool),
				Renderer:   render,
				Payments:   payment.NewSimulator(e.cfg.Payment.SuccessRate, e.log.Component("payment")),
				Notifier:   sms.New(e.cfg.AfricasTalking, e.log.Component("sms")),
				Logger:     e.log.Component("dispatcher"),
				PremiumFee: e.cfg.USSD.PremiumListingFee,
			})
			defer d.Wait()

			if sessionID == "" {
				sessionID = "dial-" + uuid.NewString()
			}
			return runDial(cmd.Context(), d, cmd.InOrStdin(), cmd.OutOrStdout(), sessionID, phone)
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "+260971234567", "número que marca")
	cmd.Flags().StringVar(&sessionID, "session", "", "ID de sesión (por defecto uno nuevo)")
	return cmd
}

// runDial envía "" para abrir la sesión y luego cada línea leída de in.
func runDial(ctx context.Context, d dispatcher, in io.Reader, out io.Writer, sessionID, phone string) error {
	con := color.New(color.FgGreen)
	end := color.New(color.FgRed)
	prompt := color.New(color.FgCyan)

	fmt.Fprintf(out, "Sesión %s desde %s\n\n", sessionID, phone)
	scanner := bufio.NewScanner(in)
	text, first := "", true
	for {
		start := time.Now()
		reply := d.Dispatch(ctx, ussd.Request{SessionID: sessionID, PhoneNumber: phone, Text: text, Start: first})
		first = false
		if reply.End {
			fmt.Fprintf(out, "%s %s\n", end.Sprint("END"), reply.Message)
			fmt.Fprintf(out, "\n(%s, %s)\n", reply.State, time.Since(start).Round(time.Millisecond))
			return nil
		}
		fmt.Fprintf(out, "%s %s\n", con.Sprint("CON"), reply.Message)
		fmt.Fprint(out, prompt.Sprint("> "))

		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		text = strings.TrimRight(scanner.Text(), "\r")
	}
}

// hours convierte horas enteras a time.Duration.
func hours(n int) time.Duration {
	return time.Duration(n) * time.Hour
}
