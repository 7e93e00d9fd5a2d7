package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/davetashner/sonarstep/internal/config"
	"github.com/davetashner/sonarstep/internal/output"
	"github.com/davetashner/sonarstep/internal/step"
)

// Ask-specific flag values.
var (
	askMaxTokens string
	askFormat    string
	askOutput    string
	askInput     string
	askHideThink bool
)

// askCmd runs the step once.
var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Answer one carsharing question",
	Long: `Run the step once and print its result.

The question comes from the prompt argument, or from --input, a JSON file
holding either {"inputVars": {...}} or the bare inputVars object ("-" reads
stdin). The API key comes from the input, --api-key, or $PERPLEXITY_API_KEY.

Exit status is 0 when the step routes to success and 2 when it routes to
error; the result is printed either way.

Examples:
  sonarstep ask "How do I list my car on Turo?"
  sonarstep ask --max-tokens 150 -f text "Does Turo include insurance?"
  echo '{"inputVars":{"prompt":"hi","perplexityApiKey":"pplx-..."}}' | sonarstep ask -i -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askMaxTokens, "max-tokens", "", "token budget for the answer (number or numeric string)")
	askCmd.Flags().StringVarP(&askFormat, "format", "f", "", "output format (json, markdown, text)")
	askCmd.Flags().StringVarP(&askOutput, "output", "o", "", "output file path (default: stdout)")
	askCmd.Flags().StringVarP(&askInput, "input", "i", "", `read inputVars JSON from this file ("-" for stdin)`)
	askCmd.Flags().BoolVar(&askHideThink, "hide-think", false, "omit the reasoning block in text output")
}

func runAsk(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && askInput == "" {
		return exitError(ExitInvalidArgs, "ask: provide a prompt argument or --input")
	}
	if len(args) > 0 && askInput != "" {
		return exitError(ExitInvalidArgs, "ask: use either a prompt argument or --input, not both")
	}

	s, err := resolveSettings(config.Settings{OutputFormat: askFormat})
	if err != nil {
		return err
	}
	formatter, err := output.GetFormatter(s.OutputFormat)
	if err != nil {
		return exitError(ExitInvalidArgs, "%v", err)
	}
	if _, ok := formatter.(*output.TextFormatter); ok && askHideThink {
		formatter = &output.TextFormatter{ShowThink: false}
	}

	in, err := askInputVars(cmd, args)
	if err != nil {
		return err
	}
	if in.PerplexityAPIKey == "" {
		in.PerplexityAPIKey = defaultAPIKey()
	}

	runner, err := newRunner(s)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd.Context(), s)
	defer cancel()
	res := runner.Run(ctx, in)

	w := cmd.OutOrStdout()
	if askOutput != "" {
		f, err := cmdFS.Create(askOutput)
		if err != nil {
			return exitError(ExitInvalidArgs, "cannot create output file: %v", err)
		}
		defer f.Close() //nolint:errcheck // best-effort close; Format reports write errors
		w = f
	}
	if err := formatter.Format(res, w); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}

	if !res.OK() {
		return exitError(ExitStepError, "")
	}
	return nil
}

// askInputVars builds the step input from --input or the prompt argument.
// --max-tokens, when given, overrides any budget in the input file.
func askInputVars(cmd *cobra.Command, args []string) (step.Input, error) {
	var in step.Input
	if askInput != "" {
		data, err := readInputFile(cmd, askInput)
		if err != nil {
			return step.Input{}, exitError(ExitInvalidArgs, "cannot read input: %v", err)
		}
		in, err = decodeInputVars(data)
		if err != nil {
			return step.Input{}, exitError(ExitInvalidArgs, "invalid input JSON: %v", err)
		}
	} else {
		in.Prompt = args[0]
	}

	if cmd.Flags().Changed("max-tokens") {
		in.MaxTokens = askMaxTokens
	}
	return in, nil
}

// readInputFile reads path, or stdin when path is "-".
func readInputFile(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return cmdFS.ReadFile(path)
}

// decodeInputVars accepts either {"inputVars": {...}} or the bare inputVars
// object.
func decodeInputVars(data []byte) (step.Input, error) {
	var env struct {
		InputVars *step.Input `json:"inputVars"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return step.Input{}, err
	}
	if env.InputVars != nil {
		return *env.InputVars, nil
	}

	var in step.Input
	if err := json.Unmarshal(data, &in); err != nil {
		return step.Input{}, err
	}
	return in, nil
}
