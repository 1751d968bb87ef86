package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"ipsqr-service/internal/ipsqr"
	"ipsqr-service/internal/services"
	"ipsqr-service/monitoring"
	"ipsqr-service/utils"
)

var errWarnings = errors.New("payload decoded with warnings")

func newDecodeCmd() *cobra.Command {
	var (
		format string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "decode [payload]",
		Short: "Decode a payload given as argument or read from stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ipsqr.ParseFormat(format)
			if err != nil {
				return err
			}

			payload, err := readPayload(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelError}))
			svc := services.NewDecodeService(ipsqr.NewDecoder(ipsqr.WithLogger(logger)), nil, monitoring.NewMonitor(), logger, 0)

			res, err := svc.Decode(cmd.Context(), services.SourceCLI, payload)
			if err != nil {
				return err
			}

			if err := writeRecord(cmd.OutOrStdout(), res.Record, f); err != nil {
				return err
			}
			for _, w := range res.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w.String())
			}

			if strict && len(res.Warnings) > 0 {
				return fmt.Errorf("%d rejected field(s): %w", len(res.Warnings), errWarnings)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(ipsqr.FormatArray), "output format: array or json")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when any field was rejected")
	return cmd
}

func readPayload(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return utils.TrimLineEnding(string(b)), nil
}

func writeRecord(w io.Writer, r *ipsqr.Record, format ipsqr.Format) error {
	out, err := ipsqr.Render(r, format)
	if err != nil {
		return err
	}

	if s, ok := out.(string); ok {
		_, err = fmt.Fprintln(w, s)
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
