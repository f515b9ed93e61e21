package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) SetUpRouter() *gin.Engine {
	router := gin.New()
	router.Use(RequestId())
	router.Use(Logger())
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "ok",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, ErrorResponse{Error: "not found"})
	})

	apiV1 := router.Group("/api/v1")
	s.SetUpApiV1Router(apiV1)

	return router
}

func (s *Server) SetUpApiV1Router(apiV1 *gin.RouterGroup) {
	apiV1.GET("/trains", s.handleListTrains)
	apiV1.POST("/trains", NeedToken(s.opts.JwtSecret), s.handleAnalyzeTrain)

	train := apiV1.Group("/trains/:train_id")
	train.Use(SetTrainToContext(s.store))
	train.GET("", s.handleGetTrain)
	train.GET("/coaches/:coach", s.handleGetCoach)
}
