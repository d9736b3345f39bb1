package main

import (
	"io"
	"log/slog"

	"github.com/arthur-debert/filedb/filedb"
	"github.com/arthur-debert/filedb/filedb/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds the state shared by the commands of one invocation
type app struct {
	fs     *storage.AferoFileSystem
	out    io.Writer
	errOut io.Writer
	v      *viper.Viper

	cfg    *cliConfig
	logger *slog.Logger
	client *filedb.Client
}

func newApp(fs *storage.AferoFileSystem, out, errOut io.Writer) *app {
	a := &app{
		fs:     fs,
		out:    out,
		errOut: errOut,
		v:      viper.New(),
	}
	a.setupViper()
	return a
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "filedb",
		Short: "filedb CLI - JSON file collections from the shell",
		Long: `filedb stores every collection in a single JSON file:

  <location>/<datastore>/<collection>.json

Configuration Sources (in order of precedence):
1. Command line flags
2. Environment variables (FILEDB_*)
3. Configuration file (FILEDB_CONFIG, ./filedb.yaml, ~/.filedb/filedb.yaml, /etc/filedb/filedb.yaml)

Examples:
  filedb -l ./data -d app -c users insert name=Ada age=36
  filedb -l ./data -d app -c users find --where age --op gt --value 30
  filedb -l ./data -d app -c users find --path '$[?(@.address.city == "London")]'
  FILEDB_PASSPHRASE=secret filedb -d app -c secrets --encrypted all`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.client == nil {
				return nil
			}
			return a.client.Close()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.String("config", "", "Config file path")
	flags.StringP("location", "l", "", "Root directory holding data stores (default \".\")")
	flags.String("tag", "", "Location tag to use (default: the default location)")
	flags.StringP("datastore", "d", "", "Data store name (default \"default\")")
	flags.StringP("collection", "c", "", "Collection name")
	flags.StringP("format", "f", "json", "Output format: json|yaml")
	flags.String("passphrase", "", "Passphrase for encrypted collections")
	flags.Bool("encrypted", false, "Open the collection encrypted")
	flags.Bool("compressed", false, "Open the collection zstd compressed")
	flags.Bool("no-cache", false, "Disable the primary index cache")
	flags.Bool("access-everyone", false, "Create directories and files writable by all users")
	flags.String("log-level", "warn", "Log level: debug|info|warn|error")
	flags.Bool("no-color", false, "Disable colored log output")

	root.AddCommand(
		a.insertCommand(),
		a.getCommand(),
		a.findCommand(),
		a.allCommand(),
		a.updateCommand(),
		a.removeCommand(),
		a.infoCommand(),
		a.locationsCommand(),
	)
	return root
}

// setup loads the configuration and builds the client
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := validateFormat(cfg.Format); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(a.errOut, cfg.LogLevel, cfg.NoColor)

	client, err := filedb.NewClientFromConfig(cfg.Config,
		filedb.WithFileSystem(a.fs),
		filedb.WithLogger(a.logger))
	if err != nil {
		return WrapError("open client", err, CommonSuggestions.CheckConfig)
	}
	a.client = client

	a.logger.Debug("configuration loaded",
		"config_file", a.v.ConfigFileUsed(),
		"tags", client.Tags(),
		"datastore", cfg.DataStore,
		"collection", cfg.Collection)
	return nil
}

// dataStore opens the configured data store
func (a *app) dataStore() (*filedb.DataStore, error) {
	if a.cfg.Tag != "" {
		return a.client.DataStoreAt(a.cfg.Tag, a.cfg.DataStore)
	}
	return a.client.DataStore(a.cfg.DataStore)
}

// collection opens the configured collection
func (a *app) collection(operation string) (filedb.Opened[Document, *Document], error) {
	if a.cfg.Collection == "" {
		return filedb.Opened[Document, *Document]{}, NewConfigError(operation, "no collection given",
			"Use --collection or set FILEDB_COLLECTION")
	}

	ds, err := a.dataStore()
	if err != nil {
		return filedb.Opened[Document, *Document]{}, WrapError(operation, err)
	}

	var opts []filedb.CollectionOption
	if a.cfg.Encrypted {
		opts = append(opts, filedb.Encrypted())
	}
	if a.cfg.Compressed {
		opts = append(opts, filedb.Compressed())
	}
	coll, err := filedb.GetCollection[Document](ds, a.cfg.Collection, opts...)
	if err != nil {
		return filedb.Opened[Document, *Document]{}, WrapError(operation, err)
	}
	return coll, nil
}

func (a *app) print(v any) error {
	return printResult(a.out, a.cfg.Format, v)
}
