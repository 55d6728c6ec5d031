package assemble

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dshills/pa/internal/library"
)

// Assembler renders the prompts of one merged configuration.
type Assembler struct {
	cfg *library.Config
	log *zap.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(a *Assembler) {
		if log != nil {
			a.log = log
		}
	}
}

// New creates an Assembler for cfg.
func New(cfg *library.Config, opts ...Option) *Assembler {
	a := &Assembler{cfg: cfg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Config returns the configuration the assembler renders from.
func (a *Assembler) Config() *library.Config {
	return a.cfg
}

// Request asks for one named prompt.
type Request struct {
	Name string
	// Args fill placeholders {0}..{8} for sequence prompts and become _args
	// for template prompts.
	Args []string
	// DataPath is the JSON or TOML file a template prompt renders against.
	DataPath string
	// Raw disables placeholder substitution.
	Raw bool
}

// Render assembles the prompt named in req.
func (a *Assembler) Render(ctx context.Context, req Request) (string, error) {
	def, err := a.lookup(req.Name)
	if err != nil {
		return "", err
	}

	a.log.Debug("rendering prompt",
		zap.String("prompt", def.Name),
		zap.String("kind", string(def.Kind())),
		zap.String("source", def.SourcePath),
		zap.Int("args", len(req.Args)),
	)

	switch def.Kind() {
	case library.KindSequence:
		if req.DataPath != "" {
			return "", &RenderError{
				Kind:   ErrWrongPromptKind,
				Prompt: def.Name,
				Path:   req.DataPath,
				Err:    errors.New("sequence prompt does not accept structured data"),
			}
		}
		fragments, err := a.readFragments(ctx, def)
		if err != nil {
			return "", err
		}
		out, err := RenderSequence(fragments, req.Args, req.Raw)
		return out, withPrompt(err, def.Name)

	case library.KindTemplate:
		if req.DataPath == "" {
			return "", &RenderError{
				Kind:   ErrWrongPromptKind,
				Prompt: def.Name,
				Err:    errors.New("template prompt requires a .json or .toml data file"),
			}
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out, err := RenderTemplate(def.Template, a.searchRoots(def), req.DataPath, req.Args)
		return out, withPrompt(err, def.Name)
	}

	return "", &RenderError{
		Kind:   ErrWrongPromptKind,
		Prompt: def.Name,
		Err:    errors.New("definition has neither a usable sequence nor a template"),
	}
}

func (a *Assembler) lookup(name string) (*library.Definition, error) {
	def, ok := a.cfg.Lookup(name)
	if !ok {
		return nil, &RenderError{Kind: ErrUnknownPrompt, Prompt: name}
	}
	return def, nil
}

func (a *Assembler) readFragments(ctx context.Context, def *library.Definition) ([]Fragment, error) {
	root := a.cfg.RootFor(def)
	fragments := make([]Fragment, 0, len(def.Prompts))
	for _, name := range def.Prompts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := library.FilePath(root, name)
		text, err := os.ReadFile(path)
		if err != nil {
			return nil, &RenderError{Kind: ErrMissingFragmentFile, Prompt: def.Name, Path: path, Err: err}
		}
		fragments = append(fragments, Fragment{Path: path, Text: string(text)})
	}
	return fragments, nil
}

// searchRoots lists the directories a template prompt may read from: its
// resolved root first, then the less specific ones.
func (a *Assembler) searchRoots(def *library.Definition) []string {
	candidates := []string{
		a.cfg.RootFor(def),
		a.cfg.PromptPath,
		filepath.Dir(def.SourcePath),
	}
	seen := make(map[string]bool, len(candidates))
	roots := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		roots = append(roots, c)
	}
	return roots
}
