package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/ayush112812/disaster-response-platform-sub001/internal/geocode"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/models"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/repository"
	"github.com/ayush112812/disaster-response-platform-sub001/internal/snapshot"
)

// Repository bundles the storage operations the HTTP layer needs.
type Repository interface {
	repository.DisasterRepository
	repository.ResourceRepository
	repository.ReportRepository
}

type Handler struct {
	repo     Repository
	store    *snapshot.Store
	geocoder geocode.Geocoder
	clock    clockwork.Clock
}

func NewHandler(repo Repository, store *snapshot.Store, geocoder geocode.Geocoder, clock clockwork.Clock) *Handler {
	return &Handler{
		repo:     repo,
		store:    store,
		geocoder: geocoder,
		clock:    clock,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)
	r.GET("/api/alerts", h.getAlerts)

	r.GET("/api/disasters", h.listDisasters)
	r.GET("/api/disasters/geojson", h.disastersGeoJSON)
	r.POST("/api/disasters", h.createDisaster)
	r.GET("/api/disasters/:id", h.getDisaster)
	r.PUT("/api/disasters/:id", h.updateDisaster)
	r.DELETE("/api/disasters/:id", h.deleteDisaster)

	r.GET("/api/disasters/:id/resources", h.listResources)
	r.POST("/api/disasters/:id/resources", h.createResource)
	r.DELETE("/api/resources/:id", h.deleteResource)

	r.GET("/api/disasters/:id/reports", h.listReports)
	r.POST("/api/disasters/:id/reports", h.createReport)
	r.PATCH("/api/reports/:id/verify", h.verifyReport)
}

func (h *Handler) health(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if age, ok := h.store.Age(h.clock.Now()); ok {
		resp["snapshot_age_seconds"] = age.Seconds()
	} else {
		resp["snapshot_age_seconds"] = nil
	}
	c.JSON(http.StatusOK, resp)
}

// getAlerts serves the latest snapshot. Filtering happens here, not in the
// aggregation core: min_magnitude narrows seismic events, severity narrows
// weather alerts, type selects a single collection.
func (h *Handler) getAlerts(c *gin.Context) {
	sn := h.store.Latest()
	if sn == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot available yet"})
		return
	}

	weather := sn.Weather
	seismic := sn.Seismic

	if s := c.Query("severity"); s != "" {
		var filtered []models.WeatherAlert
		for _, a := range weather {
			if string(a.Severity) == s {
				filtered = append(filtered, a)
			}
		}
		weather = filtered
	}
	if m := c.Query("min_magnitude"); m != "" {
		if mag, err := strconv.ParseFloat(m, 64); err == nil {
			var filtered []models.SeismicEvent
			for _, e := range seismic {
				if e.Magnitude >= mag {
					filtered = append(filtered, e)
				}
			}
			seismic = filtered
		}
	}

	switch c.Query("type") {
	case "weather":
		c.JSON(http.StatusOK, gin.H{"weather": weather, "last_updated": sn.LastUpdated})
	case "seismic":
		c.JSON(http.StatusOK, gin.H{"seismic": seismic, "last_updated": sn.LastUpdated})
	case "social":
		c.JSON(http.StatusOK, gin.H{"social": sn.Social, "last_updated": sn.LastUpdated})
	case "news":
		c.JSON(http.StatusOK, gin.H{"news": sn.News, "last_updated": sn.LastUpdated})
	default:
		c.JSON(http.StatusOK, gin.H{
			"weather":             weather,
			"seismic":             seismic,
			"social":              sn.Social,
			"news":                sn.News,
			"total_alerts":        sn.TotalAlerts,
			"high_priority_count": sn.HighPriorityCount,
			"last_updated":        sn.LastUpdated,
		})
	}
}

type disasterRequest struct {
	Title        string   `json:"title" binding:"required"`
	LocationName string   `json:"location_name"`
	Latitude     *float64 `json:"lat"`
	Longitude    *float64 `json:"lng"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	Severity     string   `json:"severity"`
	Status       string   `json:"status"`
}

// requestUser reads the caller identity headers, defaulting to an
// anonymous contributor when absent.
func requestUser(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return "anonymous"
}

func (h *Handler) createDisaster(c *gin.Context) {
	var req disasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := h.clock.Now()
	userID := requestUser(c)

	d := &models.Disaster{
		ID:           uuid.NewString(),
		Title:        req.Title,
		LocationName: req.LocationName,
		Description:  req.Description,
		Tags:         req.Tags,
		Severity:     models.DisasterSeverity(defaultStr(req.Severity, string(models.DisasterSeverityMedium))),
		Status:       models.DisasterStatus(defaultStr(req.Status, string(models.DisasterStatusActive))),
		OwnerID:      userID,
		AuditTrail:   []models.AuditEntry{{Action: "create", UserID: userID, Timestamp: now}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if req.Latitude != nil && req.Longitude != nil {
		d.Latitude = *req.Latitude
		d.Longitude = *req.Longitude
	} else if req.LocationName != "" {
		coords, err := h.geocoder.Forward(c.Request.Context(), req.LocationName)
		if err != nil && !errors.Is(err, geocode.ErrNotFound) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "geocoding failed"})
			return
		}
		d.Latitude = coords.Latitude
		d.Longitude = coords.Longitude
	}

	if err := h.repo.CreateDisaster(c.Request.Context(), d); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create disaster"})
		return
	}

	c.JSON(http.StatusCreated, d)
}

func (h *Handler) listDisasters(c *gin.Context) {
	f := repository.Filter{Limit: 20}

	if s := c.Query("status"); s != "" {
		f.Status = models.DisasterStatus(s)
	}
	if s := c.Query("severity"); s != "" {
		f.Severity = models.DisasterSeverity(s)
	}
	if t := c.Query("tag"); t != "" {
		f.Tag = t
	}
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= 500 {
			f.Limit = lim
		}
	}

	disasters, err := h.repo.ListDisasters(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch disasters"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"disasters": disasters})
}

func (h *Handler) disastersGeoJSON(c *gin.Context) {
	disasters, err := h.repo.ListDisasters(c.Request.Context(), repository.Filter{Limit: 500})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch disasters"})
		return
	}

	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, toGeoJSON(disasters))
}

func (h *Handler) getDisaster(c *gin.Context) {
	d, err := h.repo.GetDisaster(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch disaster"})
		return
	}
	if d == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "disaster not found"})
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) updateDisaster(c *gin.Context) {
	existing, err := h.repo.GetDisaster(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch disaster"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "disaster not found"})
		return
	}

	var req disasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := h.clock.Now()
	existing.Title = req.Title
	if req.LocationName != "" {
		existing.LocationName = req.LocationName
	}
	if req.Latitude != nil && req.Longitude != nil {
		existing.Latitude = *req.Latitude
		existing.Longitude = *req.Longitude
	}
	if req.Description != "" {
		existing.Description = req.Description
	}
	if req.Tags != nil {
		existing.Tags = req.Tags
	}
	if req.Severity != "" {
		existing.Severity = models.DisasterSeverity(req.Severity)
	}
	if req.Status != "" {
		existing.Status = models.DisasterStatus(req.Status)
	}
	existing.UpdatedAt = now
	existing.AuditTrail = append(existing.AuditTrail, models.AuditEntry{
		Action: "update", UserID: requestUser(c), Timestamp: now,
	})

	if err := h.repo.UpdateDisaster(c.Request.Context(), existing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update disaster"})
		return
	}
	c.JSON(http.StatusOK, existing)
}

func (h *Handler) deleteDisaster(c *gin.Context) {
	err := h.repo.DeleteDisaster(c.Request.Context(), c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "disaster not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete disaster"})
		return
	}
	c.Status(http.StatusNoContent)
}

type resourceRequest struct {
	Name         string   `json:"name" binding:"required"`
	Type         string   `json:"type" binding:"required"`
	LocationName string   `json:"location_name"`
	Latitude     *float64 `json:"lat"`
	Longitude    *float64 `json:"lng"`
	Quantity     int      `json:"quantity"`
}

func (h *Handler) createResource(c *gin.Context) {
	var req resourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r := &models.Resource{
		ID:           uuid.NewString(),
		DisasterID:   c.Param("id"),
		Name:         req.Name,
		Type:         req.Type,
		LocationName: req.LocationName,
		Quantity:     req.Quantity,
		CreatedAt:    h.clock.Now(),
	}
	if req.Latitude != nil && req.Longitude != nil {
		r.Latitude = *req.Latitude
		r.Longitude = *req.Longitude
	} else if req.LocationName != "" {
		if coords, err := h.geocoder.Forward(c.Request.Context(), req.LocationName); err == nil {
			r.Latitude = coords.Latitude
			r.Longitude = coords.Longitude
		}
	}

	if err := h.repo.CreateResource(c.Request.Context(), r); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create resource"})
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) listResources(c *gin.Context) {
	resources, err := h.repo.ListResources(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch resources"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resources": resources})
}

func (h *Handler) deleteResource(c *gin.Context) {
	err := h.repo.DeleteResource(c.Request.Context(), c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete resource"})
		return
	}
	c.Status(http.StatusNoContent)
}

type reportRequest struct {
	Content  string `json:"content" binding:"required"`
	ImageURL string `json:"image_url"`
}

func (h *Handler) createReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r := &models.Report{
		ID:                 uuid.NewString(),
		DisasterID:         c.Param("id"),
		UserID:             requestUser(c),
		Content:            req.Content,
		ImageURL:           req.ImageURL,
		VerificationStatus: models.VerificationPending,
		CreatedAt:          h.clock.Now(),
	}

	if err := h.repo.CreateReport(c.Request.Context(), r); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create report"})
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) listReports(c *gin.Context) {
	reports, err := h.repo.ListReports(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch reports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (h *Handler) verifyReport(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := models.VerificationStatus(req.Status)
	if status != models.VerificationVerified && status != models.VerificationRejected && status != models.VerificationPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid verification status"})
		return
	}

	err := h.repo.UpdateReportStatus(c.Request.Context(), c.Param("id"), status)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "verification_status": status})
}

func defaultStr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
