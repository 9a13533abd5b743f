package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/bridge"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/config"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/partners"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/security/statecodec"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/store"
	"github.com/nitheshb/caco-Marketing-tool-sub001/internal/store/pg"
)

func main() {
	_ = godotenv.Load()

	var (
		configPath = envOr("CONFIG_PATH", "configs/config.yaml")
		out        = envOr("SOCIALCTL_OUT", "text")
	)
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "socialctl",
		Short:         "CLI operativa para el servicio de conexiones sociales",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = c
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "ruta a config.yaml (env CONFIG_PATH)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	emit := func(v any) {
		if out == "json" {
			b, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(b))
			return
		}
		fmt.Printf("%v\n", v)
	}

	// grupo migrate
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migraciones del schema postgres",
	}
	migrateUpCmd := &cobra.Command{
		Use:   "up",
		Short: "Aplica migraciones pendientes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Storage.Driver != "postgres" {
				return fmt.Errorf("migrate requiere storage.driver=postgres (actual: %s)", cfg.Storage.Driver)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			s, err := pg.Open(ctx, cfg.Storage.DSN, pg.Options{MaxConns: 2}, nil)
			if err != nil {
				return err
			}
			defer s.Close()
			res, err := store.Migrator().Run(ctx, s)
			if err != nil {
				return err
			}
			if out == "json" {
				emit(res)
				return nil
			}
			fmt.Printf("applied=%v skipped=%v took=%s\n", res.Applied, res.Skipped, res.Duration)
			return nil
		},
	}
	migrateListCmd := &cobra.Command{
		Use:   "list",
		Short: "Lista las migraciones embebidas",
		RunE: func(cmd *cobra.Command, args []string) error {
			ms, err := store.Migrator().Parse()
			if err != nil {
				return err
			}
			for _, m := range ms {
				fmt.Printf("%04d  %s\n", m.Version, m.Name)
			}
			return nil
		},
	}
	migrateCmd.AddCommand(migrateUpCmd, migrateListCmd)

	// grupo state
	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "Codificar/inspeccionar el parámetro state de OAuth",
	}
	stateInspectCmd := &cobra.Command{
		Use:   "inspect <state>",
		Short: "Decodifica y valida un state (firma y expiración si hay secret)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec := statecodec.New([]byte(cfg.State.Secret), cfg.State.TTL)
			d, err := codec.DecodeFull(args[0])
			if err != nil {
				return fmt.Errorf("state inválido: %w", err)
			}
			emit(map[string]any{
				"signed":    codec.Signed(),
				"payload":   d.Payload,
				"nonce":     d.Nonce,
				"expiresAt": d.ExpiresAt,
			})
			return nil
		},
	}
	var encUser, encPlatform, encIntegration, encRedirect string
	stateEncodeCmd := &cobra.Command{
		Use:   "encode",
		Short: "Genera un state como lo haría el flujo connect",
		RunE: func(cmd *cobra.Command, args []string) error {
			if encUser == "" || encPlatform == "" {
				return fmt.Errorf("--user y --platform son requeridos")
			}
			payload := map[string]any{
				"principalId":   encUser,
				"integrationId": encIntegration,
				"platform":      strings.ToLower(encPlatform),
			}
			if encRedirect != "" {
				payload["redirect"] = encRedirect
			}
			s, err := statecodec.New([]byte(cfg.State.Secret), cfg.State.TTL).Encode(payload)
			if err != nil {
				return err
			}
			fmt.Println(s)
			return nil
		},
	}
	stateEncodeCmd.Flags().StringVar(&encUser, "user", "", "ID del usuario")
	stateEncodeCmd.Flags().StringVar(&encPlatform, "platform", "", "Plataforma (facebook|instagram|linkedin|tiktok|youtube)")
	stateEncodeCmd.Flags().StringVar(&encIntegration, "integration", "default", "ID de integración")
	stateEncodeCmd.Flags().StringVar(&encRedirect, "redirect", "", "Redirect relativo post-callback (opcional)")
	stateCmd.AddCommand(stateInspectCmd, stateEncodeCmd)

	// grupo bridge
	bridgeCmd := &cobra.Command{
		Use:   "bridge",
		Short: "Credential Bridge",
	}
	bridgeSecretCmd := &cobra.Command{
		Use:   "secret <email>",
		Short: "Imprime el secreto derivado para un email (soporte)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := bridge.New([]byte(cfg.Bridge.Key), nil)
			if err != nil {
				return err
			}
			secret, err := b.DeriveSecret(args[0])
			if err != nil {
				return err
			}
			emit(map[string]string{"email": bridge.NormalizeEmail(args[0]), "secret": secret})
			return nil
		},
	}
	bridgeCmd.AddCommand(bridgeSecretCmd)

	// partners
	partnersCmd := &cobra.Command{
		Use:   "partners",
		Short: "Lista partners y si están configurados en este entorno",
		RunE: func(cmd *cobra.Command, args []string) error {
			extra := make([]partners.Descriptor, 0, len(cfg.Partners))
			for _, p := range cfg.Partners {
				extra = append(extra, partners.Descriptor{ID: p.ID, Name: p.Name, PrimaryColor: p.PrimaryColor, SecondaryColor: p.SecondaryColor})
			}
			reg := partners.New(extra)
			type row struct {
				ID     string `json:"id"`
				Name   string `json:"name"`
				Login  bool   `json:"login"`
				Verify bool   `json:"verify"`
			}
			rows := []row{}
			for _, d := range reg.List() {
				p, _ := reg.Resolve(d.ID)
				rows = append(rows, row{ID: d.ID, Name: d.Name, Login: p.LoginConfigured(), Verify: p.VerifyConfigured()})
			}
			if out == "json" {
				emit(rows)
				return nil
			}
			for _, r := range rows {
				fmt.Printf("%-14s %-20s login=%t verify=%t\n", r.ID, r.Name, r.Login, r.Verify)
			}
			return nil
		},
	}

	root.AddCommand(migrateCmd, stateCmd, bridgeCmd, partnersCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
