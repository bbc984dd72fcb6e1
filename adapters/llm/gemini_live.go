// Package llm adapts Google's Gemini Live API to the realtime model
// boundary the session controller speaks.
package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/danarifki/temani/domain"
	"github.com/danarifki/temani/domain/entities"
	"github.com/danarifki/temani/domain/repositories"
	"github.com/danarifki/temani/internal/audio"
)

const defaultLiveModel = "gemini-2.5-flash-native-audio-preview-09-2025"

// GeminiLive opens realtime bidirectional audio sessions against Gemini.
type GeminiLive struct {
	client *genai.Client
	logger *zap.Logger
	model  string
}

// NewGeminiLive creates the live-model adapter. The credential must be
// present before any network attempt.
func NewGeminiLive(ctx context.Context, apiKey string, logger *zap.Logger) (*GeminiLive, error) {
	if apiKey == "" {
		return nil, domain.ErrMissingCredential
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiLive{
		client: client,
		logger: logger,
		model:  defaultLiveModel,
	}, nil
}

// Connect opens one live session configured for audio responses, the
// selected prebuilt voice, transcription in both directions, and the tool
// manifest.
func (g *GeminiLive) Connect(ctx context.Context, cfg repositories.ConnectConfig) (repositories.LiveStream, error) {
	config := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: string(cfg.Voice)},
			},
		},
		SystemInstruction:        genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser),
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	}
	if len(cfg.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(cfg.Tools))
		for _, tool := range cfg.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  convSchema(tool.Parameters),
			})
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	sess, err := g.client.Live.Connect(ctx, g.model, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnectionFailed, err)
	}
	g.logger.Info("Live session opened",
		zap.String("model", g.model),
		zap.String("voice", string(cfg.Voice)))
	return &geminiStream{session: sess, logger: g.logger}, nil
}

// geminiStream wraps one open live session.
type geminiStream struct {
	session *genai.Session
	logger  *zap.Logger
	once    sync.Once
}

func (s *geminiStream) SendAudio(pcm []byte) error {
	return s.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{
			Data:     pcm,
			MIMEType: audio.PCMMIMEType(repositories.InputSampleRate),
		},
	})
}

func (s *geminiStream) SendText(text string) error {
	return s.session.SendClientContent(genai.LiveClientContentInput{
		Turns:        []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		TurnComplete: genai.Ptr(true),
	})
}

func (s *geminiStream) SendImage(data []byte, mimeType, caption string) error {
	content := &genai.Content{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			genai.NewPartFromBytes(data, mimeType),
			genai.NewPartFromText(caption),
		},
	}
	return s.session.SendClientContent(genai.LiveClientContentInput{
		Turns:        []*genai.Content{content},
		TurnComplete: genai.Ptr(true),
	})
}

func (s *geminiStream) SendToolResults(results []repositories.ToolResult) error {
	responses := make([]*genai.FunctionResponse, 0, len(results))
	for _, r := range results {
		responses = append(responses, &genai.FunctionResponse{
			ID:       r.CallID,
			Name:     r.Name,
			Response: r.Payload,
		})
	}
	return s.session.SendToolResponse(genai.LiveToolResponseInput{
		FunctionResponses: responses,
	})
}

func (s *geminiStream) Receive() ([]repositories.ServerMessage, error) {
	msg, err := s.session.Receive()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnectionFailed, err)
	}
	return decodeServerMessage(msg), nil
}

func (s *geminiStream) Close() error {
	var err error
	s.once.Do(func() {
		err = s.session.Close()
	})
	return err
}

// decodeServerMessage flattens one provider message into ordered domain
// messages: transcription deltas first, then turn completion, inline audio,
// and interruption, then tool calls.
func decodeServerMessage(msg *genai.LiveServerMessage) []repositories.ServerMessage {
	var out []repositories.ServerMessage
	if sc := msg.ServerContent; sc != nil {
		if sc.InputTranscription != nil && sc.InputTranscription.Text != "" {
			out = append(out, repositories.TranscriptionDelta{
				Speaker: entities.SpeakerChild,
				Text:    sc.InputTranscription.Text,
			})
		}
		if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
			out = append(out, repositories.TranscriptionDelta{
				Speaker: entities.SpeakerCompanion,
				Text:    sc.OutputTranscription.Text,
			})
		}
		if sc.TurnComplete {
			out = append(out, repositories.TurnComplete{})
		}
		if sc.ModelTurn != nil {
			for _, part := range sc.ModelTurn.Parts {
				if part.InlineData != nil && len(part.InlineData.Data) > 0 {
					out = append(out, repositories.AudioDelta{PCM: part.InlineData.Data})
				}
			}
		}
		if sc.Interrupted {
			out = append(out, repositories.Interrupted{})
		}
	}
	if tc := msg.ToolCall; tc != nil && len(tc.FunctionCalls) > 0 {
		calls := make([]repositories.ToolCall, 0, len(tc.FunctionCalls))
		for _, fc := range tc.FunctionCalls {
			calls = append(calls, repositories.ToolCall{
				CallID: fc.ID,
				Name:   fc.Name,
				Args:   fc.Args,
			})
		}
		out = append(out, repositories.ToolCallBatch{Calls: calls})
	}
	return out
}

// convSchema converts a jsonschema declaration into the provider's schema
// type.
func convSchema(schema *jsonschema.Schema) *genai.Schema {
	if schema == nil {
		return nil
	}

	enums := make([]string, 0, len(schema.Enum))
	for _, v := range schema.Enum {
		enums = append(enums, fmt.Sprintf("%v", v))
	}

	gs := genai.Schema{
		Format:      schema.Format,
		Description: schema.Description,
		Enum:        enums,
		Items:       convSchema(schema.Items),
		Required:    schema.Required,
	}
	if n := len(schema.Properties); n > 0 {
		gs.Properties = make(map[string]*genai.Schema, n)
		for k, prop := range schema.Properties {
			gs.Properties[k] = convSchema(prop)
		}
	}
	switch schema.Type {
	case "object":
		gs.Type = genai.TypeObject
	case "array":
		gs.Type = genai.TypeArray
	case "string":
		gs.Type = genai.TypeString
	case "number":
		gs.Type = genai.TypeNumber
	case "integer":
		gs.Type = genai.TypeInteger
	case "boolean":
		gs.Type = genai.TypeBoolean
	}
	return &gs
}
