package thumbnail

// FormatDirective is appended to every prompt sent to the provider.
const FormatDirective = ". Format: YouTube thumbnail, 16:9 aspect ratio, 1280x720 resolution, high quality, attention-grabbing"

// PromptInput carries the caller-controlled parts of a prompt. Description
// must be non-empty; callers reject empty descriptions before composing.
type PromptInput struct {
	Style       string
	CustomStyle string
	Description string
	IncludeText bool
	Text        string
}

// ComposePrompt builds the provider prompt:
// style fragment (or custom override), description, optional text overlay
// clause, format directive. The output depends only on the input.
func ComposePrompt(in PromptInput) string {
	prompt := LookupStyle(in.Style).Prompt
	if in.CustomStyle != "" {
		prompt = in.CustomStyle
	}
	prompt += ". " + in.Description
	if in.IncludeText && in.Text != "" {
		prompt += `. Include bold, eye-catching text that says "` + in.Text + `"`
	}
	return prompt + FormatDirective
}
