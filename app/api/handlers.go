package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ouvidorlabs/ouvidor/app/ai"
	"github.com/ouvidorlabs/ouvidor/app/company"
	"github.com/ouvidorlabs/ouvidor/app/coupon"
	"github.com/ouvidorlabs/ouvidor/app/database"
	"github.com/ouvidorlabs/ouvidor/app/tasks"
)

func NewHandler(configCache *company.ConfigCache, companyRepo database.CompanyRepository,
	complaintRepo database.ComplaintRepository, couponService *coupon.Service,
	analyzer *ai.Analyzer, responder *ai.Responder,
	scheduler tasks.TaskSchedulerInterface, providerFactory tasks.SessionProviderFactory) *Handler {
	return &Handler{
		companyRepo:     companyRepo,
		complaintRepo:   complaintRepo,
		configCache:     configCache,
		couponService:   couponService,
		analyzer:        analyzer,
		responder:       responder,
		scheduler:       scheduler,
		providerFactory: providerFactory,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	companyCount := h.configCache.GetConfigCount()
	complaintCount, err := h.complaintRepo.GetComplaintCount()
	if err != nil {
		slog.Error("Database error", "operation", "get_complaint_count", "error", err)
		health["status"] = "unhealthy"
		health["error"] = "database unavailable"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	health["status"] = "healthy"
	health["companies"] = companyCount
	health["complaints"] = complaintCount
	health["ai_enabled"] = h.analyzer != nil

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.complaintRepo.GetStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) ListComplaints(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	complaints, err := h.complaintRepo.ListComplaints(database.ComplaintFilter{
		CompanySlug: c.Query("company"),
		Status:      c.Query("status"),
		Sentiment:   c.Query("sentiment"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		slog.Error("Database error", "operation", "list_complaints", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"complaints": complaints,
		"count":      len(complaints),
	})
}

func (h *Handler) GetComplaint(c *gin.Context) {
	complaint, ok := h.complaintByID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, complaint)
}

func (h *Handler) GetBenchmark(c *gin.Context) {
	benchmark, err := h.complaintRepo.GetBenchmark()
	if err != nil {
		slog.Error("Database error", "operation", "get_benchmark", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"companies": benchmark})
}

func (h *Handler) ValidateCoupon(c *gin.Context) {
	result, err := h.couponService.Validate(c.Param("code"))
	if err != nil {
		slog.Error("Database error", "operation", "validate_coupon", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if result.State == coupon.StateNotFound {
		c.JSON(http.StatusNotFound, gin.H{"state": result.State})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":            result.State,
		"code":             result.Coupon.Code,
		"discount_percent": result.Coupon.DiscountPercent,
		"valid_until":      result.Coupon.ValidUntil.Format(time.RFC3339),
	})
}

func (h *Handler) RedeemCoupon(c *gin.Context) {
	code := c.Param("code")
	if err := h.couponService.Redeem(code); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code, "state": coupon.StateUsed})
}

// RunScrape enqueues an immediate scrape for a configured company.
func (h *Handler) RunScrape(c *gin.Context) {
	slug := c.Param("slug")
	companyConfig, err := h.configCache.GetConfig(slug)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown company", "company": slug})
		return
	}

	task := tasks.NewScrapeCompanyTask(companyConfig, h.providerFactory, h.companyRepo, h.complaintRepo)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Failed to enqueue scrape task", "company", slug, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "task queue unavailable"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"company": slug,
		"task_id": task.GetID(),
		"status":  "queued",
	})
}

func (h *Handler) AnalyzeComplaint(c *gin.Context) {
	if h.analyzer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI analysis is not configured"})
		return
	}
	complaint, ok := h.complaintByID(c)
	if !ok {
		return
	}

	analysis, err := h.analyzer.Analyze(c.Request.Context(), complaint.Title, complaint.Text)
	if err != nil {
		slog.Error("Analysis failed", "complaint_id", complaint.ID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "analysis failed"})
		return
	}

	classification := ai.MarshalClassification(analysis)
	err = h.complaintRepo.UpdateAnalysis(complaint.ID, database.AnalysisUpdate{
		Sentiment:      analysis.Sentiment,
		SentimentScore: analysis.SentimentScore,
		Classification: classification,
		UrgencyScore:   analysis.Urgency,
	})
	if err != nil {
		slog.Error("Database error", "operation", "update_analysis", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// GenerateResponse drafts a reply with a coupon for an analyzed complaint.
func (h *Handler) GenerateResponse(c *gin.Context) {
	complaint, ok := h.complaintByID(c)
	if !ok {
		return
	}
	if complaint.AnalyzedAt == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "complaint must be analyzed before drafting a response"})
		return
	}

	input := ai.ComplaintInput{
		Title:     complaint.Title,
		Text:      complaint.Text,
		UserName:  complaint.UserName,
		Category:  ai.PrimaryCategory(complaint.Classification),
		Sentiment: complaint.Sentiment,
	}
	if complaint.SentimentScore != nil {
		input.SentimentScore = *complaint.SentimentScore
	}
	if complaint.UrgencyScore != nil {
		input.Urgency = *complaint.UrgencyScore
	}

	discount := ai.DiscountFor(input.Urgency, input.Sentiment, input.SentimentScore)
	issued, err := h.couponService.Issue(complaint.ID, discount)
	if err != nil {
		slog.Error("Failed to issue coupon", "complaint_id", complaint.ID, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	response := h.responder.GenerateResponse(c.Request.Context(), input, issued.Code, discount)
	if err := h.complaintRepo.UpdateGeneratedResponse(complaint.ID, response, issued.Code, discount); err != nil {
		slog.Error("Database error", "operation", "update_generated_response", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response":         response,
		"coupon_code":      issued.Code,
		"discount_percent": discount,
	})
}

func (h *Handler) EditResponse(c *gin.Context) {
	complaint, ok := h.complaintByID(c)
	if !ok {
		return
	}

	var req editResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "response text required"})
		return
	}

	if err := h.complaintRepo.UpdateEditedResponse(complaint.ID, req.Response); err != nil {
		slog.Error("Database error", "operation", "update_edited_response", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": complaint.ID, "response": req.Response})
}

// SendResponse marks a drafted reply as published. Posting to the target
// site happens manually; this records that it was done.
func (h *Handler) SendResponse(c *gin.Context) {
	complaint, ok := h.complaintByID(c)
	if !ok {
		return
	}
	if complaint.ResponseGenerated == "" && complaint.ResponseEdited == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "no response drafted for this complaint"})
		return
	}

	if err := h.complaintRepo.MarkResponseSent(complaint.ID); err != nil {
		slog.Error("Database error", "operation", "mark_response_sent", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": complaint.ID, "status": "sent"})
}

func (h *Handler) complaintByID(c *gin.Context) (*database.Complaint, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid complaint id"})
		return nil, false
	}

	complaint, err := h.complaintRepo.GetComplaint(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_complaint", "error", err)
		c.Status(http.StatusInternalServerError)
		return nil, false
	}
	if complaint == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "complaint not found"})
		return nil, false
	}
	return complaint, true
}
