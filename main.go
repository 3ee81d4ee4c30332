package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/agencyval/commission-recon/config"
	"github.com/agencyval/commission-recon/handler"
	"github.com/agencyval/commission-recon/service"
)

func main() {
	// Initialize configuration
	cfg := config.LoadConfig()

	// Initialize document processors
	pdfProcessor := service.NewPDFProcessor()
	sheetProcessor := service.NewSheetProcessor()

	// Initialize service layer
	ingestService := service.NewIngestService(cfg, pdfProcessor, sheetProcessor)

	// Initialize handler layer
	ingestHandler := handler.NewIngestHandler(ingestService)

	// Setup Gin router
	router := gin.Default()

	// Configure max multipart memory (32 MB)
	router.MaxMultipartMemory = 32 << 20

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Commission Reconciliation",
		})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		documents := api.Group("/documents")
		{
			documents.POST("/statements", ingestHandler.UploadStatements)
			documents.POST("/policies", ingestHandler.UploadPolicyList)
		}
		api.GET("/reconciliation", ingestHandler.GetReconciliation)
		api.GET("/records", ingestHandler.GetRecords)
		api.GET("/policies", ingestHandler.GetPolicies)
		api.POST("/policies/:index/exclude", ingestHandler.ExcludePolicy)
		api.GET("/log", ingestHandler.GetLog)
		api.POST("/session/reset", ingestHandler.ResetSession)
	}

	// Start server
	log.Printf("Starting Commission Reconciliation Service on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
