package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harun/rentdesk/internal/config"
	"github.com/harun/rentdesk/internal/tracing"
	"github.com/harun/rentdesk/pkg/aitools"
	"github.com/harun/rentdesk/pkg/httpapi"
)

var (
	toolsMode     string
	toolsOutput   string
	toolsHint     string
	toolsProvider string
	toolsArgs     string
	toolsUser     string
	toolsRole     string
	toolsCompany  string
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Inspect and run AI tools",
	Long:  `Inspect the tool catalog, render manifests and run single tools through the executor.`,
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tools and whether the mode enables them",
	Args:  cobra.NoArgs,
	RunE:  runToolsList,
}

var toolsManifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Render the manifest an LLM would receive",
	Long: `Render the tool manifest for a caller, prioritized by --hint when the
catalog exceeds the tool cap. --provider selects raw entries or the OpenAI or
Anthropic tool parameter format.`,
	Args: cobra.NoArgs,
	RunE: runToolsManifest,
}

var toolsExecCmd = &cobra.Command{
	Use:   "exec NAME",
	Short: "Execute one tool through the gated executor",
	Long: `Execute one tool as the given caller. The call passes the same mode, role,
user and validation gates as an HTTP call, and is audited.`,
	Args: cobra.ExactArgs(1),
	RunE: runToolsExec,
}

func init() {
	toolsCmd.PersistentFlags().StringVar(&toolsMode, "mode", "", "tools mode for this command (NONE, READONLY, FULL); default is the configured mode")
	toolsCmd.PersistentFlags().StringVarP(&toolsOutput, "output", "o", "json", "output format (json, yaml)")

	callerFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&toolsUser, "user", "", "calling user id")
		cmd.Flags().StringVar(&toolsRole, "role", string(aitools.RoleManager), "calling user role")
		cmd.Flags().StringVar(&toolsCompany, "company", "", "company id (default is the configured company)")
	}

	toolsManifestCmd.Flags().StringVar(&toolsHint, "hint", "", "prompt text used to prioritize tools")
	toolsManifestCmd.Flags().StringVar(&toolsProvider, "provider", httpapi.ProviderRaw, "manifest format (raw, openai, anthropic)")
	callerFlags(toolsManifestCmd)

	toolsExecCmd.Flags().StringVar(&toolsArgs, "args", "{}", "tool arguments as JSON")
	callerFlags(toolsExecCmd)

	toolsCmd.AddCommand(toolsListCmd, toolsManifestCmd, toolsExecCmd)
	rootCmd.AddCommand(toolsCmd)
}

// openTools loads config and assembles the gateway. --mode pins the mode
// for the command; otherwise the live configured mode applies.
func openTools(ctx context.Context) (*gateway, *config.Config, error) {
	loader, cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	var modes aitools.ModeProvider = config.NewModeProvider(loader)
	if toolsMode != "" {
		if err := config.NewValidator().ValidateToolsMode(toolsMode); err != nil {
			return nil, nil, err
		}
		modes = aitools.StaticMode(aitools.ParseMode(toolsMode))
	}

	lg, err := newLogger(cfg, false)
	if err != nil {
		return nil, nil, err
	}

	gw, err := buildGateway(ctx, cfg, modes, lg.GetZerolog())
	if err != nil {
		return nil, nil, err
	}
	return gw, cfg, nil
}

func callerContext(cfg *config.Config) aitools.ExecutionContext {
	company := toolsCompany
	if company == "" {
		company = cfg.Company.ID
	}
	role, ok := aitools.ParseRole(toolsRole)
	if !ok {
		// Unknown roles reach the executor unchanged and are rejected there.
		role = aitools.Role(toolsRole)
	}
	return aitools.ExecutionContext{
		UserID:    strings.TrimSpace(toolsUser),
		CompanyID: company,
		Role:      role,
	}
}

func runToolsList(cmd *cobra.Command, args []string) error {
	gw, _, err := openTools(cmd.Context())
	if err != nil {
		return err
	}
	defer gw.Close()

	mode := gw.registry.Mode()
	return render(cmd.OutOrStdout(), toolsOutput, httpapi.ToolList{
		Mode:  mode,
		Tools: gw.registry.ListTools(mode),
	})
}

func runToolsManifest(cmd *cobra.Command, args []string) error {
	gw, cfg, err := openTools(cmd.Context())
	if err != nil {
		return err
	}
	defer gw.Close()

	m := gw.registry.BuildManifest(cmd.Context(), callerContext(cfg), toolsHint)

	var tools any
	switch strings.ToLower(toolsProvider) {
	case httpapi.ProviderRaw, "":
		tools = m.Entries
	case httpapi.ProviderOpenAI:
		tools = aitools.OpenAITools(m)
	case httpapi.ProviderAnthropic:
		tools = aitools.AnthropicTools(m)
	default:
		return fmt.Errorf("unknown provider %q (must be one of: raw, openai, anthropic)", toolsProvider)
	}

	return render(cmd.OutOrStdout(), toolsOutput, httpapi.ManifestResponse{
		Provider: strings.ToLower(toolsProvider),
		Tools:    tools,
		Dropped:  m.Dropped,
	})
}

func runToolsExec(cmd *cobra.Command, args []string) error {
	name := args[0]

	arguments, err := aitools.DecodeArguments(toolsArgs)
	if err != nil {
		return fmt.Errorf("invalid --args: %w", err)
	}

	gw, cfg, err := openTools(cmd.Context())
	if err != nil {
		return err
	}
	defer gw.Close()

	ctx := tracing.NewRequestContext(cmd.Context(), "", "")
	result, err := gw.executor.Execute(ctx, name, arguments, callerContext(cfg))
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), toolsOutput, httpapi.ExecuteResponse{Tool: name, Result: result})
}

// render writes v as indented JSON or YAML. YAML goes through JSON first so
// json tags and SDK marshalers decide the field names.
func render(w io.Writer, format string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	switch strings.ToLower(format) {
	case "json", "":
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml", "yml":
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (must be json or yaml)", format)
	}
}
