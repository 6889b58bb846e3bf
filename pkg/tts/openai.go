package tts

import "context"

const (
	openAIBaseURL  = "https://api.openai.com/v1"
	providerOpenAI = "openai"

	// openAIPCMRate is fixed by the API for response_format=pcm.
	openAIPCMRate = 24000
)

const (
	VoiceAlloy   = "alloy"
	VoiceEcho    = "echo"
	VoiceFable   = "fable"
	VoiceOnyx    = "onyx"
	VoiceNova    = "nova"
	VoiceShimmer = "shimmer"

	ModelTTS1   = "tts-1"
	ModelTTS1HD = "tts-1-hd"
)

// OpenAI synthesizes with the OpenAI speech endpoint. Its PCM is always
// 24 kHz, so WithSampleRate is ignored.
type OpenAI struct {
	hosted
}

// NewOpenAI defaults to tts-1 with the alloy voice.
func NewOpenAI(opts ...Option) (*OpenAI, error) {
	cfg := DefaultConfig()
	cfg.ModelID, cfg.VoiceID = ModelTTS1, VoiceAlloy
	cfg.Apply(opts...)
	cfg.SampleRate = openAIPCMRate
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.VoiceID == "" {
		cfg.VoiceID = VoiceAlloy
	}
	return &OpenAI{newHosted(providerOpenAI, openAIBaseURL, "Bearer ", cfg)}, nil
}

type openAISpeech struct {
	Model          string `json:"model"`
	Voice          string `json:"voice"`
	Input          string `json:"input"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize returns the spoken text as 24 kHz PCM.
func (o *OpenAI) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	return o.synthesize(ctx, text, PCMFormat(openAIPCMRate), func(text string) (string, any) {
		return "/audio/speech", openAISpeech{
			Model:          o.cfg.ModelID,
			Voice:          o.cfg.VoiceID,
			Input:          text,
			ResponseFormat: "pcm",
		}
	})
}

// Health lists models.
func (o *OpenAI) Health(ctx context.Context) error { return o.health(ctx, "/models") }

// VoiceID returns the configured voice.
func (o *OpenAI) VoiceID() string { return o.cfg.VoiceID }

var _ Provider = (*OpenAI)(nil)
