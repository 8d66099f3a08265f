package routes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"onboarding-assistant/internal/ai"
	"onboarding-assistant/internal/config"
	"onboarding-assistant/internal/logger"
	"onboarding-assistant/models"
	"onboarding-assistant/services"
	"onboarding-assistant/utils"
)

// AssistantDeps are the explicitly constructed services the assistant routes
// operate on; nothing is reached through ambient global lookup.
type AssistantDeps struct {
	Corpus *services.CorpusLoader
	Chat   *services.ChatService
	Store  *services.VectorStore
}

func SetupAssistantRoutes(router *gin.Engine, cfg *config.Config, deps AssistantDeps) {
	api := router.Group("/api/onboarding")

	// Per-section guidance. While the corpus is still loading this answers
	// immediately from static section metadata instead of blocking.
	api.GET("/guidance/:section", func(c *gin.Context) {
		section, ok := models.ParseSection(c.Param("section"))
		if !ok {
			utils.RespondWithBadRequest(c, "Unknown onboarding section", gin.H{"section": c.Param("section")})
			return
		}

		if !deps.Corpus.IsLoaded() {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				defer cancel()
				if err := deps.Corpus.EnsureLoaded(ctx); err != nil {
					logger.Error("Background corpus load failed", "error", err)
				}
			}()
			c.JSON(http.StatusOK, provisionalGuidance(section))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		resp, err := deps.Corpus.GetSectionGuidance(ctx, section)
		if err != nil {
			respondWithQueryError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.GuidanceResponse{
			Section: section,
			Guidance: models.Guidance{
				Title:      models.MetaFor(section).Title,
				Content:    resp.Answer,
				Sources:    resp.Sources,
				Confidence: resp.Confidence,
			},
			RelatedSections: models.RelatedSections(section),
		})
	})

	// Stand-alone help question.
	api.POST("/help", func(c *gin.Context) {
		var req models.HelpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		var section models.Section
		if req.Section != "" {
			parsed, ok := models.ParseSection(req.Section)
			if !ok {
				utils.RespondWithBadRequest(c, "Unknown onboarding section", gin.H{"section": req.Section})
				return
			}
			section = parsed
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		resp, err := deps.Corpus.QueryWithContext(ctx, req.Question, section, req.Context)
		if err != nil {
			respondWithQueryError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.HelpResponse{
			Question:    req.Question,
			Answer:      resp.Answer,
			Sources:     resp.Sources,
			Confidence:  resp.Confidence,
			Context:     models.HelpContext{Section: section, UserContext: req.Context},
			Suggestions: services.SuggestionsFor(section, req.Question),
		})
	})

	// Conversational turn.
	api.POST("/chat", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}
		if req.Context != nil && req.Context.Section != "" {
			if _, ok := models.ParseSection(string(req.Context.Section)); !ok {
				utils.RespondWithBadRequest(c, "Unknown onboarding section", gin.H{"section": req.Context.Section})
				return
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		resp, err := deps.Chat.HandleMessage(ctx, req)
		if err != nil {
			respondWithQueryError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	})

	// Conversation history.
	api.GET("/chat/:session_id/history", func(c *gin.Context) {
		session, err := deps.Chat.History(c.Param("session_id"))
		if err != nil {
			if errors.Is(err, models.ErrSessionNotFound) {
				utils.RespondWithNotFound(c, "Chat session not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to retrieve chat history", nil)
			return
		}
		c.JSON(http.StatusOK, session)
	})
}

// provisionalGuidance assembles a guidance payload from static section
// metadata with confidence 0.5, used before the corpus finishes loading.
func provisionalGuidance(section models.Section) models.GuidanceResponse {
	meta := models.MetaFor(section)

	var sb strings.Builder
	sb.WriteString(meta.Description)
	sb.WriteString(" You will need: ")
	sb.WriteString(strings.Join(meta.Requirements, "; "))
	sb.WriteString(fmt.Sprintf(". Estimated time: %s.", meta.EstimatedTime))

	return models.GuidanceResponse{
		Section: section,
		Guidance: models.Guidance{
			Title:      meta.Title,
			Content:    sb.String(),
			Sources:    []models.DocumentSource{},
			Confidence: 0.5,
		},
		RelatedSections: models.RelatedSections(section),
	}
}

// respondWithQueryError maps core errors to stable HTTP responses. Raw
// provider error strings are logged, never returned to the caller.
func respondWithQueryError(c *gin.Context, err error) {
	logger.Error("Assistant request failed", "path", c.FullPath(), "error", err)

	var provErr *ai.ProviderError
	if errors.As(err, &provErr) {
		utils.RespondWithError(c, http.StatusBadGateway, "provider_error", provErr.UserMessage(), nil)
		return
	}
	if errors.Is(err, models.ErrNotInitialized) {
		utils.RespondWithServiceUnavailable(c, "The onboarding documentation is still loading. Please try again shortly.")
		return
	}
	utils.RespondWithInternalError(c, "Failed to generate a response", nil)
}
