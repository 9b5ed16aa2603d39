// Package aitools exposes business operations as tools for an LLM
// function-calling loop.
//
// The package has four parts:
//
//   - Catalog: the immutable, ordered set of tool definitions contributed by
//     domain providers at startup.
//   - Registry: builds a per-request manifest. Every tool's parameter schema
//     is translated into an LLM-compatible JSON Schema, and the list is capped
//     at the platform limit with prompt-aware prioritization.
//   - Executor: the single authoritative call path. It applies the mode gate,
//     role gate and user gate, validates arguments against the original
//     schema, invokes the tool, strips sensitive fields and emits audit
//     events.
//   - Adapters that turn a manifest into OpenAI or Anthropic tool params.
//
// Example:
//
//	catalog, _ := aitools.NewCatalog(propertyTools, leaseTools)
//	executor, _ := aitools.NewExecutor(aitools.ExecutorConfig{
//		Catalog: catalog,
//		Modes:   aitools.StaticMode(aitools.ModeFull),
//	})
//	registry, _ := aitools.NewRegistry(aitools.RegistryConfig{
//		Catalog:  catalog,
//		Executor: executor,
//	})
//	manifest := registry.BuildManifest(ctx, ec, "muéstrame mis propiedades")
//	result, err := manifest.Dispatch(ctx, "list_properties", `{"city": null}`)
package aitools
