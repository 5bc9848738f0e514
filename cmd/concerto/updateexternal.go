package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/concerto-project/concerto-go/collab"
	"github.com/concerto-project/concerto-go/internal/cliconfig"
	"github.com/concerto-project/concerto-go/internal/lockfile"
	"github.com/concerto-project/concerto-go/log"
	"github.com/concerto-project/concerto-go/modelmanager"
)

func newUpdateExternalCmd(cfg *cliconfig.Config, logCfg *log.Config) *cobra.Command {
	var (
		files      []string
		namespaces []string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "update-external",
		Short: "Fetch and revalidate every externally-imported model, skipping unchanged ones per the lock file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := resolvedConfig(cfg, logCfg, cmd.Flags())
			if err != nil {
				return err
			}

			mgr, err := loadManager(logCfg, files)
			if err != nil {
				return err
			}

			lf, err := lockfile.Load(opts.LockFile)
			if err != nil {
				return err
			}

			targets := mgr.ExternalImportTargets(namespaces)

			var toFetch []string

			for ns, uri := range targets {
				if lf.NeedsFetch(ns, uri, force) {
					toFetch = append(toFetch, ns)
				}
			}

			if len(toFetch) == 0 {
				for ns := range targets {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: unchanged\n", ns)
				}

				fmt.Fprintln(cmd.OutOrStdout(), "nothing to fetch: every namespace matches the lock file (use --force to refetch)")

				return nil
			}

			rec := newRecordingDownloader(collab.NewHTTPDownloader())

			err = mgr.UpdateExternalModels(cmd.Context(), modelmanager.UpdateExternalModelsOptions{
				Namespaces: toFetch,
			}, rec)
			if err != nil {
				return err
			}

			for ns, content := range rec.byURI(targets) {
				lf.Record(ns, targets[ns], content)
			}

			if err := lf.Save(opts.LockFile); err != nil {
				return err
			}

			for _, ns := range toFetch {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: fetched\n", ns)
			}

			for ns := range targets {
				if !contains(toFetch, ns) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: unchanged\n", ns)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "a .cto file to load (repeatable)")
	cmd.Flags().StringArrayVar(&namespaces, "namespace", nil, "restrict the fetch to this namespace (repeatable)")
	cmd.Flags().BoolVar(&force, "force", false, "refetch every namespace even if the lock file says it is unchanged")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}

	return false
}

// recordingDownloader wraps a [collab.Downloader], keeping every
// downloaded body keyed by the URI it came from so the caller can hash
// it into the lock file after [modelmanager.ModelManager.UpdateExternalModels]
// has validated and installed it -- without a second round trip.
type recordingDownloader struct {
	inner collab.Downloader

	mu      sync.Mutex
	content map[string][]byte
}

func newRecordingDownloader(inner collab.Downloader) *recordingDownloader {
	return &recordingDownloader{inner: inner, content: map[string][]byte{}}
}

func (r *recordingDownloader) Download(ctx context.Context, uri string) ([]byte, error) {
	body, err := r.inner.Download(ctx, uri)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.content[uri] = body
	r.mu.Unlock()

	return body, nil
}

// byURI resolves each namespace in targets to the content recorded for
// its URI, for namespaces that were actually fetched this run.
func (r *recordingDownloader) byURI(targets map[string]string) map[string][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string][]byte, len(r.content))

	for ns, uri := range targets {
		if body, ok := r.content[uri]; ok {
			out[ns] = body
		}
	}

	return out
}
