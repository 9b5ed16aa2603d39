package aitools

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel/attribute"

	"github.com/harun/rentdesk/internal/observability"
	"github.com/harun/rentdesk/internal/tracing"
	"github.com/harun/rentdesk/pkg/schema"
	"github.com/harun/rentdesk/pkg/schema/llmschema"
)

// DefaultMaxTools is the largest tool list LLM function-calling APIs accept.
const DefaultMaxTools = 128

// Schema fallback reasons.
const (
	FallbackTranslationFailed = "translation_failed"
	FallbackNonObjectRoot     = "non_object_root"
)

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	Catalog  *Catalog
	Executor *Executor
	// MaxTools caps the manifest size. Zero means DefaultMaxTools.
	MaxTools int
	// TranslationWarnings and ShapeWarnings remember which tools already
	// logged a schema diagnostic. Share them across registries to keep the
	// logs quiet for the life of the process.
	TranslationWarnings *WarnOnce
	ShapeWarnings       *WarnOnce
	Logger              zerolog.Logger
}

// Registry builds per-request tool manifests.
type Registry struct {
	catalog             *Catalog
	executor            *Executor
	maxTools            int
	translationWarnings *WarnOnce
	shapeWarnings       *WarnOnce
	logger              zerolog.Logger
}

// ToolInfo is the listing view of a tool.
type ToolInfo struct {
	Name         string     `json:"name" yaml:"name"`
	Description  string     `json:"description" yaml:"description"`
	Mutability   Mutability `json:"mutability" yaml:"mutability"`
	Enabled      bool       `json:"enabled" yaml:"enabled"`
	AllowedRoles []Role     `json:"allowedRoles" yaml:"allowedRoles"`
}

// NewRegistry creates a Registry.
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("registry requires a catalog")
	}
	if cfg.Executor == nil {
		return nil, errors.New("registry requires an executor")
	}
	if cfg.MaxTools <= 0 {
		cfg.MaxTools = DefaultMaxTools
	}
	if cfg.TranslationWarnings == nil {
		cfg.TranslationWarnings = NewWarnOnce()
	}
	if cfg.ShapeWarnings == nil {
		cfg.ShapeWarnings = NewWarnOnce()
	}

	return &Registry{
		catalog:             cfg.Catalog,
		executor:            cfg.Executor,
		maxTools:            cfg.MaxTools,
		translationWarnings: cfg.TranslationWarnings,
		shapeWarnings:       cfg.ShapeWarnings,
		logger:              cfg.Logger.With().Str("component", "aitools.registry").Logger(),
	}, nil
}

// Mode returns the mode the executor currently enforces.
func (r *Registry) Mode() Mode {
	return r.executor.Mode()
}

// Executor returns the executor manifests delegate to.
func (r *Registry) Executor() *Executor {
	return r.executor
}

// ListTools lists every catalog tool with whether mode lets it run.
func (r *Registry) ListTools(mode Mode) []ToolInfo {
	defs := r.catalog.Definitions()
	out := make([]ToolInfo, len(defs))
	for i, def := range defs {
		out[i] = ToolInfo{
			Name:         def.Name,
			Description:  def.Description,
			Mutability:   def.Mutability,
			Enabled:      mode.Allows(def.Mutability),
			AllowedRoles: append([]Role(nil), def.AllowedRoles...),
		}
	}
	return out
}

// BuildManifest translates every tool for ec and caps the list at the
// configured maximum. When the catalog is larger than the cap and hint is
// not empty, the tools most relevant to the hint are kept.
func (r *Registry) BuildManifest(ctx context.Context, ec ExecutionContext, hint string) *Manifest {
	ctx, span := tracing.StartSpan(ctx, tracerName, "aitools.manifest",
		attribute.Int("catalog.size", r.catalog.Len()),
	)
	defer span.End()

	defs := r.catalog.Definitions()
	dropped := 0
	if len(defs) > r.maxTools {
		if hint != "" {
			defs = prioritize(defs, hint)
		}
		dropped = len(defs) - r.maxTools
		defs = defs[:r.maxTools]

		observability.RecordManifestTruncation(dropped)
		logger := tracing.LoggerFromContext(ctx, r.logger)
		logger.Debug().
			Int("dropped", dropped).
			Int("max_tools", r.maxTools).
			Bool("hinted", hint != "").
			Msg("Tool manifest truncated")
	}
	span.SetAttributes(attribute.Int("manifest.size", len(defs)))

	entries := make([]ManifestEntry, len(defs))
	for i, def := range defs {
		entries[i] = ManifestEntry{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  r.parameters(def),
			executor:    r.executor,
			ec:          ec,
		}
	}

	return &Manifest{Entries: entries, Dropped: dropped}
}

// parameters returns the JSON Schema shown to the LLM for def. It never
// fails: anything that cannot be described becomes the passthrough schema.
func (r *Registry) parameters(def *Definition) map[string]any {
	doc, err := r.translate(def)
	if err == nil {
		return doc
	}

	observability.RecordSchemaFallback(FallbackTranslationFailed)
	if r.translationWarnings.First(def.Name) {
		r.logger.Error().Err(err).Str("tool", def.Name).Msg("Schema translation failed, using passthrough schema")
	}
	return PassthroughSchema()
}

func (r *Registry) translate(def *Definition) (doc map[string]any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("translator panic: %v", rec)
		}
	}()

	root := unwrapRoot(llmschema.Translate(def.Parameters))
	if !isObjectRoot(root) {
		if acceptsAnything(def.Parameters) {
			return PassthroughSchema(), nil
		}
		observability.RecordSchemaFallback(FallbackNonObjectRoot)
		if r.shapeWarnings.First(def.Name) {
			r.logger.Warn().
				Str("tool", def.Name).
				Str("root_kind", rootKind(root)).
				Msg("Tool parameters are not an object, using passthrough schema")
		}
		return PassthroughSchema(), nil
	}

	doc = llmschema.Render(root)
	if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc)); err != nil {
		return nil, fmt.Errorf("rendered schema does not compile: %w", err)
	}
	return doc, nil
}

// PassthroughSchema is the permissive object schema used when a tool's
// parameters cannot be described faithfully.
func PassthroughSchema() map[string]any {
	return llmschema.Render(llmschema.PassthroughObject())
}

// unwrapRoot peels wrappers and lazy references off a translated root.
func unwrapRoot(n *schema.Node) *schema.Node {
	seen := make(map[*schema.Node]bool)
	for n != nil && !seen[n] {
		seen[n] = true
		switch {
		case n.Kind.IsWrapper():
			n = n.Inner
		case n.Kind == schema.KindLazy:
			n = n.Resolve()
		default:
			return n
		}
	}
	return n
}

func isObjectRoot(n *schema.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case schema.KindObject:
		return true
	case schema.KindJSON:
		return n.Document["type"] == "object"
	}
	return false
}

// acceptsAnything reports whether the original schema is an explicit
// "accept anything" schema, possibly wrapped.
func acceptsAnything(n *schema.Node) bool {
	if n == nil {
		return true
	}
	root := unwrapRoot(n)
	return root != nil && (root.Kind == schema.KindAny || root.Kind == schema.KindUnknown)
}

func rootKind(n *schema.Node) string {
	if n == nil {
		return "nil"
	}
	return n.Kind.String()
}
