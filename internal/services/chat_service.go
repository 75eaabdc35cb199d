package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/models"
	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	chatTemperature     = 0.6
	chatMaxTokens       = 1024
	chatHistoryTurns    = 4
	lessonContextChars  = 1500
	lessonSnippetChars  = 100
	chatLogWriteTimeout = 5 * time.Second

	FallbackReply = "Lo siento, no pude procesar eso."
)

var (
	ErrAINotConfigured = errors.New("ai service not configured")
	ErrEmptyMessage    = errors.New("message is required")
)

var (
	htmlTagPattern  = regexp.MustCompile(`<[^>]*>?`)
	navigatePattern = regexp.MustCompile(`\[\[NAVIGATE:([^\]]+)\]\]`)
)

// Completer is the chat completion call the proxy needs. *openai.Client
// satisfies it.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewGroqClient returns an OpenAI-compatible client pointed at Groq, or nil
// when no API key is configured.
func NewGroqClient(cfg *config.Config) Completer {
	if cfg.GroqAPIKey == "" {
		return nil
	}
	clientCfg := openai.DefaultConfig(cfg.GroqAPIKey)
	clientCfg.BaseURL = strings.TrimRight(cfg.GroqAPIURL, "/")
	return openai.NewClientWithConfig(clientCfg)
}

type ChatService struct {
	db      *gorm.DB
	cfg     *config.Config
	lessons *LessonIndex
	client  Completer
	logs    sync.WaitGroup
}

func NewChatService(db *gorm.DB, cfg *config.Config, lessons *LessonIndex, client Completer) *ChatService {
	return &ChatService{db: db, cfg: cfg, lessons: lessons, client: client}
}

// Configured reports whether an upstream completion API is available.
func (s *ChatService) Configured() bool {
	return s.cfg.GroqAPIKey != "" && s.client != nil
}

// Reply answers one chat message. The exchange is logged in the background
// after the reply is produced.
func (s *ChatService) Reply(ctx context.Context, userID *uuid.UUID, req *dto.ChatRequest, meta models.ChatLogMetadata) (*dto.ChatResponse, error) {
	if !s.Configured() {
		return nil, ErrAINotConfigured
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	var user *models.User
	if userID != nil {
		var u models.User
		if err := s.db.WithContext(ctx).First(&u, "id = ?", *userID).Error; err == nil {
			user = &u
		}
	}

	pc := parseChatContext(req.Context)
	lessonContext := s.lessonContext(pc.page)
	messages := []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleSystem,
		Content: BuildSystemPrompt(user, lessonContext, pc.text),
	}}
	messages = append(messages, recentHistory(req.History)...)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Message,
	})

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.AITimeout)
	defer cancel()
	resp, err := s.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       s.cfg.GroqModel,
		Messages:    messages,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	reply := ""
	if len(resp.Choices) > 0 {
		reply = resp.Choices[0].Message.Content
	}
	if strings.TrimSpace(reply) == "" {
		reply = FallbackReply
	}

	entry := &models.ChatLog{
		UserMessage:   req.Message,
		AIResponse:    reply,
		Context:       pc.logged,
		LessonContext: snippet(lessonContext, lessonSnippetChars),
		Metadata:      meta,
	}
	if user != nil {
		entry.UserID = &user.ID
		entry.Username = user.Username
	}
	s.logExchange(entry)

	_, navigate := ParseNavigation(reply)
	return &dto.ChatResponse{Reply: reply, Navigate: navigate}, nil
}

func (s *ChatService) logExchange(entry *models.ChatLog) {
	s.logs.Add(1)
	go func() {
		defer s.logs.Done()
		ctx, cancel := context.WithTimeout(context.Background(), chatLogWriteTimeout)
		defer cancel()
		if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
			slog.Error("failed to log chat", "error", err, "action", "chat_log")
		}
	}()
}

// Wait blocks until background chat log writes finish.
func (s *ChatService) Wait() {
	s.logs.Wait()
}

func (s *ChatService) lessonContext(page string) string {
	slug := ExtractSlug(page)
	if slug == "" {
		return ""
	}
	lesson, ok := s.lessons.Lookup(slug)
	if !ok {
		return ""
	}
	content := truncateRunes(stripHTML(lesson.Content), lessonContextChars)
	return fmt.Sprintf("\n*** ACTIVE LESSON CONTEXT ***\nUser is currently viewing the lesson: %q\nContent: %s...\n(Use this information to answer specific questions about the lesson topic)\n",
		lesson.Title, content)
}

// BuildSystemPrompt assembles the assistant persona with the caller's
// profile, the active lesson and the page they are on.
func BuildSystemPrompt(user *models.User, lessonContext, pageContext string) string {
	userLine := "User: Guest"
	memory := ""
	if user != nil {
		level := user.Profile.Level
		if level == "" {
			level = "A1"
		}
		userLine = fmt.Sprintf("User: %s | Level: %s | Streak: %d days", user.Username, level, user.Stats.Streak)
		if title := user.Stats.LastViewedLesson.Title; title != "" {
			memory = fmt.Sprintf("\nMEMORY: The user was last studying %q.", title)
		}
	}

	page := pageContext
	if page == "" {
		page = "General Dashboard"
	}

	special := ""
	if strings.Contains(pageContext, "Contribuir") ||
		strings.Contains(pageContext, "Admin") ||
		strings.Contains(pageContext, "Lección") {
		special = `
*** SPECIAL CONTEXT: LESSON MODE ***
If the user is creating a lesson (Contribute), assist with Turkish examples and grammar.
If the user is viewing a lesson, answer based on the ACTIVE LESSON CONTEXT provided below.
`
	}

	var b strings.Builder
	b.WriteString("You are \"Capi\", the AI mascot for \"TurkAmerica\".\n")
	b.WriteString("Your goal: Help Spanish speakers learn Turkish correctly.\n\n")
	b.WriteString("CONTEXT:\n")
	b.WriteString(userLine + "\n")
	b.WriteString(lessonContext + "\n")
	b.WriteString("Current Page: " + page + memory + "\n\n")
	b.WriteString(`CRITICAL RULES:
1. **Language**: EXPLAIN in Spanish, but PROVIDE EXAMPLES in Turkish.
2. **Clarity**: Finish your sentences. Do not trail off.
3. **Grammar**: When explaining grammar, be structured. Don't mix Spanish endings into Turkish words unless comparing them.
4. **Personality**: You can use emojis to be friendly!
5. **Length**: If the answer is long, break it into bullet points.
`)
	b.WriteString(special)
	b.WriteString(`
NAVIGATION:
- Only navigate if explicitly asked (e.g., "Ir a perfil").
- Valid: /Inicio, /Consejos/, /Gramatica/, /Community-Lessons/, /NivelA1/ thru /NivelC1/, /Perfil/
- Example: "Llevame a perfil" -> "Vamos al perfil. [[NAVIGATE:/Perfil/]]"`)
	return b.String()
}

// ParseNavigation removes the first [[NAVIGATE:/path]] directive from reply
// and returns the cleaned text and the path.
func ParseNavigation(reply string) (string, string) {
	m := navigatePattern.FindStringSubmatchIndex(reply)
	if m == nil {
		return reply, ""
	}
	path := strings.TrimSpace(reply[m[2]:m[3]])
	clean := strings.TrimSpace(reply[:m[0]] + reply[m[1]:])
	return clean, path
}

// ExtractSlug returns the last path segment of a lesson page URL, or "" when
// page is not a lesson page.
func ExtractSlug(page string) string {
	if !strings.Contains(page, "/Lesson/") && !strings.Contains(page, "/Leccion/") {
		return ""
	}
	page = strings.TrimSuffix(page, "/")
	return page[strings.LastIndex(page, "/")+1:]
}

type chatContext struct {
	text   string
	page   string
	logged datatypes.JSON
}

// parseChatContext accepts either an object carrying "page" or a bare string.
func parseChatContext(raw json.RawMessage) chatContext {
	if len(raw) == 0 || string(raw) == "null" {
		return chatContext{logged: datatypes.JSON("{}")}
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err == nil {
		page, _ := obj["page"].(string)
		compact, _ := json.Marshal(obj)
		return chatContext{text: string(compact), page: page, logged: datatypes.JSON(compact)}
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		pc := chatContext{text: str}
		if strings.Contains(str, "/") {
			pc.page = str
		}
		wrapped, _ := json.Marshal(map[string]string{"raw": str})
		pc.logged = datatypes.JSON(wrapped)
		return pc
	}

	text := string(raw)
	wrapped, _ := json.Marshal(map[string]string{"raw": text})
	return chatContext{text: text, logged: datatypes.JSON(wrapped)}
}

func recentHistory(history []dto.ChatTurn) []openai.ChatCompletionMessage {
	if len(history) > chatHistoryTurns {
		history = history[len(history)-chatHistoryTurns:]
	}
	out := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, turn := range history {
		if turn.Content == "" {
			continue
		}
		switch turn.Role {
		case openai.ChatMessageRoleUser, openai.ChatMessageRoleAssistant:
			out = append(out, openai.ChatCompletionMessage{Role: turn.Role, Content: turn.Content})
		}
	}
	return out
}

func stripHTML(s string) string {
	return htmlTagPattern.ReplaceAllString(s, " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func snippet(s string, n int) string {
	if s == "" {
		return ""
	}
	return truncateRunes(s, n) + "..."
}
