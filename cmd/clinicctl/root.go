package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/jrsteele09/go-clinic-console/apiclient"
	"github.com/jrsteele09/go-clinic-console/internal/config"
	"github.com/jrsteele09/go-clinic-console/internal/logging"
	"github.com/jrsteele09/go-clinic-console/session"
	"github.com/jrsteele09/go-clinic-console/session/storage"
	"github.com/jrsteele09/go-clinic-console/session/storage/filestore"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app is the state shared by every subcommand.
type app struct {
	configPath string
	apiURL     string
	dataFolder string
	logLevel   string
	asJSON     bool

	in     io.Reader
	out    io.Writer
	logger zerolog.Logger
	client *apiclient.Client
	store  *session.Store
	closer io.Closer
}

func execute(args []string, in io.Reader, out io.Writer) error {
	a := &app{in: in, out: out}
	defer a.close()

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	return root.ExecuteContext(context.Background())
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "clinicctl",
		Short:         "Clinic administration from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", os.Getenv("CLINIC_CONFIG"), "YAML config file")
	flags.StringVar(&a.apiURL, "api", "", "Clinic API base URL (overrides API_BASE_URL)")
	flags.StringVar(&a.dataFolder, "data", "", "Folder holding the saved session (overrides FOLDER)")
	flags.StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flags.BoolVar(&a.asJSON, "json", false, "Print JSON instead of tables")

	cmd.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.passwdCmd(),
		a.profileCmd(),
		a.usersCmd(),
		a.patientsCmd(),
	)
	return cmd
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.FromFile(a.configPath)
	if err != nil {
		return err
	}
	a.logger = logging.SetupWriter(os.Stderr, "DEV", a.logLevel)

	baseURL := cfg.GetAPIBaseURL()
	if a.apiURL != "" {
		baseURL = a.apiURL
	}
	folder := cfg.GetDataFolder()
	if a.dataFolder != "" {
		folder = a.dataFolder
	}

	// One process-wide session: an in-memory store would forget it on exit.
	var sessionStorage session.Storage
	if cfg.GetSessionStore() == config.StoreMemory {
		fs, err := filestore.New(filepath.Join(folder, "sessions"))
		if err != nil {
			return err
		}
		sessionStorage = fs
	} else {
		s, closer, err := storage.Open(ctx, cfg, folder)
		if err != nil {
			return err
		}
		sessionStorage, a.closer = s, closer
	}

	a.client = apiclient.New(baseURL, apiclient.WithLogger(a.logger))
	a.store, err = session.NewStore(a.client, sessionStorage,
		session.WithStorageKey(cfg.GetSessionKey()),
		session.WithRequestTimeout(cfg.GetRequestTimeout()),
		session.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}
	return a.store.Restore(ctx)
}

func (a *app) close() {
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

// api calls the clinic API with the saved credential. A 401 clears it.
func (a *app) api(ctx context.Context) *apiclient.Authorized {
	return a.client.Authorized(a.store, func() { a.store.Logout(context.WithoutCancel(ctx)) })
}

// print writes v as JSON, or calls table when --json is not set.
func (a *app) print(v any, table func(w *tabwriter.Writer)) error {
	if a.asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	table(w)
	return w.Flush()
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
