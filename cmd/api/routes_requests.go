package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wmatuze/vbc-web-sub001/internal/auth"
	"github.com/wmatuze/vbc-web-sub001/internal/httpmiddleware"
	"github.com/wmatuze/vbc-web-sub001/internal/requests"
)

func (a *app) registerRequestRoutes(r *gin.Engine) {
	// The per-IP limiter guards only the public form posts; admin routes,
	// content reads and the infra endpoints are not counted against it.
	limiter := httpmiddleware.NewSimpleTokenBucket(a.cfg.RateLimitPerMin, a.cfg.RateLimitPerMin)
	api := r.Group("/api", limiter.GinMiddleware())
	admin := r.Group("/api", auth.AdminAuth(a.cfg.JWTSigningKey, a.cfg.JWTIssuer))

	// Public submissions
	api.POST("/membership/renew", a.submitRequest(requests.Renewals))
	api.POST("/foundation-classes/register", a.submitRequest(requests.FoundationClasses))
	api.POST("/event-signups", a.submitRequest(requests.EventSignups))

	// Admin workflow
	admin.GET("/membership/renewals", a.listRequests(requests.Renewals))
	admin.PUT("/membership/renewals/:id", a.changeStatus(requests.Renewals))
	admin.PUT("/membership/renewals/:id/status", a.changeStatus(requests.Renewals))
	admin.DELETE("/membership/renewals/:id", a.deleteRequest(requests.Renewals))

	admin.GET("/foundation-classes/registrations", a.listRequests(requests.FoundationClasses))
	admin.PUT("/foundation-classes/registrations/:id", a.changeStatus(requests.FoundationClasses))
	admin.PUT("/foundation-classes/registrations/:id/status", a.changeStatus(requests.FoundationClasses))
	admin.DELETE("/foundation-classes/registrations/:id", a.deleteRequest(requests.FoundationClasses))

	admin.GET("/event-signups", a.listRequests(requests.EventSignups))
	admin.PUT("/event-signups/:id", a.changeStatus(requests.EventSignups))
	admin.PUT("/event-signups/:id/status", a.changeStatus(requests.EventSignups))
	admin.DELETE("/event-signups/:id", a.deleteRequest(requests.EventSignups))
}

func (a *app) submitRequest(kind requests.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload map[string]any
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid JSON body"})
			return
		}

		doc, res, err := a.requests.Submit(c.Request.Context(), kind, payload)
		if err != nil {
			log.Printf("submit %s failed: %v", kind.Name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
			return
		}
		if !res.IsValid {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": res.Errors})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": kind.Name + " received",
			"data":    doc,
		})
	}
}

func (a *app) listRequests(kind requests.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		docs, err := a.requests.List(c.Request.Context(), kind)
		if err != nil {
			log.Printf("list %s failed: %v", kind.Name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": docs})
	}
}

func (a *app) changeStatus(kind requests.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "status required"})
			return
		}

		doc, res, err := a.requests.ChangeStatus(c.Request.Context(), kind, c.Param("id"), req.Status)
		if err != nil {
			writeRequestError(c, kind, err)
			return
		}
		if !res.IsValid {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": res.Errors})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": kind.Name + " status updated",
			"data":    doc,
		})
	}
}

func (a *app) deleteRequest(kind requests.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.requests.Delete(c.Request.Context(), kind, c.Param("id")); err != nil {
			writeRequestError(c, kind, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": kind.Name + " deleted"})
	}
}

func writeRequestError(c *gin.Context, kind requests.Kind, err error) {
	switch {
	case errors.Is(err, requests.ErrBadID):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
	case errors.Is(err, requests.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": kind.Name + " not found"})
	default:
		log.Printf("%s handler failed: %v", kind.Name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
	}
}
