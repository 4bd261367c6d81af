// Command dynamic-include serves repository-backed pages through the include
// filter: eligible fragments come out as SSI, ESI or client-script include
// directives for an intermediary to resolve.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	dynamicinclude "github.com/dynamic-include/dynamic-include"
	"github.com/dynamic-include/dynamic-include/renderer"
	"github.com/dynamic-include/dynamic-include/repository"
)

// Set by goreleaser ldflags.
var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dynamic-include",
		Short:         "Fragment include filter for repository-backed pages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(versionCmd(), serveCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("dynamic-include %s\n", version)
		},
	}
}

func serveCmd() *cobra.Command {
	var (
		configFilenameFlag string
		listenFlag         string
		repositoryFlag     string
		verbosityTraceFlag bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve pages through the include filter",
		RunE: func(_ *cobra.Command, _ []string) error {
			logLevel := zerolog.DebugLevel
			if verbosityTraceFlag {
				logLevel = zerolog.TraceLevel
			}
			log.Logger = log.Level(logLevel).Output(zerolog.ConsoleWriter{Out: os.Stdout}).
				With().Str("version", version).Logger()

			config, err := getConfig(configFilenameFlag)
			if err != nil {
				return fmt.Errorf("reading config: %w", err)
			}
			if listenFlag != "" {
				config.Listen = listenFlag
			}
			if repositoryFlag != "" {
				config.Repository = repositoryFlag
			}

			var repo repository.Repository
			if config.Repository == "memory" {
				repo = repository.NewMemRepository()
			} else {
				repo = repository.NewSQLiteRepository(config.Repository)
			}
			for _, seed := range config.Resources {
				err := repo.Put(repository.Resource{
					Path:         seed.Path,
					ResourceType: seed.ResourceType,
					Content:      []byte(seed.Content),
					Children:     seed.Children,
				})
				if err != nil {
					return fmt.Errorf("seeding %s: %w", seed.Path, err)
				}
			}

			registry := prometheus.NewRegistry()
			filter := dynamicinclude.New(dynamicinclude.Config{
				Options:  config.Filter,
				Resolver: dynamicinclude.RepositoryResolver{Repository: repo},
				Logger:   &log.Logger,
				Metrics:  registry,
			})
			rend := &renderer.Renderer{
				Repository: repo,
				Filter:     filter,
				Log:        log.Logger,
			}

			r := chi.NewRouter()
			r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			r.Handle("/*", filter.Middleware(rend))

			log.Info().Str("listen", config.Listen).Msg("Serving pages through the include filter")
			return http.ListenAndServe(config.Listen, r)
		},
	}
	cmd.Flags().StringVar(&configFilenameFlag, "config", "", "Path to config file")
	cmd.Flags().StringVar(&listenFlag, "listen", "", "Address to listen on (overrides config)")
	cmd.Flags().StringVar(&repositoryFlag, "db", "", "Repository DB file name, 'memory' for in-memory (overrides config)")
	cmd.Flags().BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	return cmd
}
