package modelmanager

import (
	"context"

	"github.com/concerto-project/concerto-go/cerror"
	"github.com/concerto-project/concerto-go/collab"
	"github.com/concerto-project/concerto-go/metamodel"
	"github.com/concerto-project/concerto-go/modelfile"
)

// UpdateExternalModelsOptions configures [ModelManager.UpdateExternalModels].
type UpdateExternalModelsOptions struct {
	// Namespaces restricts the fetch to these namespaces' external
	// imports. Empty means every loaded file's external imports.
	Namespaces []string
}

// UpdateExternalModels fetches, via downloader, the text of every import
// annotated with a `from <uri>` clause, reachable from the namespaces in
// opts (or every loaded namespace if opts.Namespaces is empty), parses
// each with the configured [Parser], installs the result (add if the
// namespace is not yet loaded, replace if it is), and revalidates the
// whole resulting graph. Any failure along the way -- download, parse,
// or validation -- leaves the manager exactly as it was (spec testable
// property 7).
func (m *ModelManager) UpdateExternalModels(
	ctx context.Context,
	opts UpdateExternalModelsOptions,
	downloader collab.Downloader,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	targets := m.externalFetchTargetsLocked(opts.Namespaces)
	if len(targets) == 0 {
		return nil
	}

	working := cloneFiles(m.files)

	var fresh []*modelfile.ModelFile

	for ns, uri := range targets {
		text, err := downloader.Download(ctx, uri)
		if err != nil {
			return cerror.New(cerror.ErrIO, "fetching external model %q from %q: %v", ns, uri, err)
		}

		ast, err := m.parserOrDefault().Parse(ns, text)
		if err != nil {
			return err
		}

		if len(ast.Models) != 1 {
			return cerror.New(cerror.ErrIllegalModel,
				"external model %q: expected exactly one namespace, got %d", ns, len(ast.Models))
		}

		mf, err := modelfile.New(ast.Models[0])
		if err != nil {
			return err
		}

		mf.Source = string(text)
		mf.External = true

		if mf.Namespace != ns {
			return cerror.New(cerror.ErrIllegalModel,
				"external model fetched for namespace %q declares namespace %q", ns, mf.Namespace)
		}

		working[ns] = mf
		fresh = append(fresh, mf)
	}

	if err := validateFiles(working, fresh, m.logOrDefault()); err != nil {
		return err
	}

	m.files = working

	return nil
}

// ExternalImportTargets reports namespace -> URI for every `from <uri>`
// import reachable from namespaces (or every loaded file if namespaces
// is empty), without fetching anything. Callers such as the CLI's
// lock-file check use this to decide which namespaces actually need a
// call to [ModelManager.UpdateExternalModels].
func (m *ModelManager) ExternalImportTargets(namespaces []string) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.externalFetchTargetsLocked(namespaces)
}

// externalFetchTargetsLocked collects namespace -> URI for every
// `from <uri>` import reachable from namespaces (or every loaded file if
// namespaces is empty). Callers must hold m.mu.
func (m *ModelManager) externalFetchTargetsLocked(namespaces []string) map[string]string {
	files := m.files
	if len(namespaces) > 0 {
		files = make(map[string]*modelfile.ModelFile, len(namespaces))

		for _, ns := range namespaces {
			if mf, ok := m.files[ns]; ok {
				files[ns] = mf
			}
		}
	}

	targets := make(map[string]string)

	for _, mf := range files {
		for ns, uri := range mf.ExternalNamespaceURIs() {
			if ns == metamodel.RootNamespace {
				continue
			}

			targets[ns] = uri
		}
	}

	return targets
}
