package server

import (
	"github.com/gin-gonic/gin"

	auction "pacomprar/internal/auctionService"
	"pacomprar/internal/identity"
	user "pacomprar/internal/userService"
	auctionhandler "pacomprar/services/auction/handler"
	userhandler "pacomprar/services/user/handler"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(auctionService *auction.Service, userService *user.Service, issuer *identity.TokenIssuer) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(AuthMiddleware(issuer))  // resolve the caller, anonymous if no token

	auctionHandler := auctionhandler.NewAuctionHandler(auctionService)
	bidHandler := auctionhandler.NewBidHandler(auctionService)
	ratingHandler := auctionhandler.NewRatingHandler(auctionService)
	commentHandler := auctionhandler.NewCommentHandler(auctionService)
	categoryHandler := auctionhandler.NewCategoryHandler(auctionService)
	userHandler := userhandler.NewUserHandler(userService)

	api := router.Group("/api")

	token := api.Group("/token")
	{
		token.POST("", userHandler.TokenHandler)
		token.POST("/refresh", userHandler.TokenRefreshHandler)
	}

	usuarios := api.Group("/usuarios")
	{
		usuarios.POST("/register", userHandler.RegisterHandler)
		usuarios.POST("/log-out", RequireAuth, userHandler.LogoutHandler)
		usuarios.GET("/profile", RequireAuth, userHandler.ProfileHandler)
		usuarios.PATCH("/profile", RequireAuth, userHandler.UpdateProfileHandler)
		usuarios.DELETE("/profile", RequireAuth, userHandler.DeleteProfileHandler)
		usuarios.POST("/change-password", RequireAuth, userHandler.ChangePasswordHandler)

		// Admin area; the service enforces the policy.
		usuarios.GET("", userHandler.ListUsersHandler)
		usuarios.GET("/:id_usuario", userHandler.GetUserHandler)
		usuarios.PUT("/:id_usuario", userHandler.UpdateUserHandler)
		usuarios.DELETE("/:id_usuario", userHandler.DeleteUserHandler)
	}

	subastas := api.Group("/subastas")
	{
		subastas.GET("", auctionHandler.ListAuctionsHandler)
		subastas.POST("", RequireAuth, auctionHandler.CreateAuctionHandler)

		subastas.GET("/categorias", categoryHandler.ListCategoriesHandler)
		subastas.POST("/categorias", RequireAuth, categoryHandler.CreateCategoryHandler)
		subastas.GET("/categorias/:id_categoria", categoryHandler.GetCategoryHandler)
		subastas.PUT("/categorias/:id_categoria", RequireAuth, categoryHandler.UpdateCategoryHandler)
		subastas.DELETE("/categorias/:id_categoria", RequireAuth, categoryHandler.DeleteCategoryHandler)

		subastas.GET("/:id_subasta", auctionHandler.GetAuctionHandler)
		subastas.PUT("/:id_subasta", RequireAuth, auctionHandler.UpdateAuctionHandler)
		subastas.DELETE("/:id_subasta", RequireAuth, auctionHandler.DeleteAuctionHandler)

		subastas.GET("/:id_subasta/pujas", bidHandler.ListBidsHandler)
		subastas.POST("/:id_subasta/pujas", RequireAuth, bidHandler.PlaceBidHandler)
		subastas.GET("/:id_subasta/pujas/:id_puja", bidHandler.GetBidHandler)
		subastas.PUT("/:id_subasta/pujas/:id_puja", RequireAuth, bidHandler.UpdateBidHandler)
		subastas.DELETE("/:id_subasta/pujas/:id_puja", RequireAuth, bidHandler.DeleteBidHandler)

		subastas.GET("/:id_subasta/ratings", ratingHandler.ListRatingsHandler)
		subastas.POST("/:id_subasta/ratings", RequireAuth, ratingHandler.CreateRatingHandler)
		subastas.GET("/:id_subasta/ratings/:id_rating", ratingHandler.GetRatingHandler)
		subastas.PUT("/:id_subasta/ratings/:id_rating", RequireAuth, ratingHandler.UpdateRatingHandler)
		subastas.DELETE("/:id_subasta/ratings/:id_rating", RequireAuth, ratingHandler.DeleteRatingHandler)

		subastas.GET("/:id_subasta/mi-rating", RequireAuth, ratingHandler.MyRatingHandler)
		subastas.POST("/:id_subasta/mi-rating", RequireAuth, ratingHandler.CreateRatingHandler)
		subastas.PUT("/:id_subasta/mi-rating", RequireAuth, ratingHandler.UpdateMyRatingHandler)
		subastas.DELETE("/:id_subasta/mi-rating", RequireAuth, ratingHandler.DeleteMyRatingHandler)

		subastas.GET("/:id_subasta/comentarios", commentHandler.ListCommentsHandler)
		subastas.POST("/:id_subasta/comentarios", RequireAuth, commentHandler.CreateCommentHandler)
		subastas.GET("/:id_subasta/comentarios/:id_comentario", commentHandler.GetCommentHandler)
		subastas.PUT("/:id_subasta/comentarios/:id_comentario", RequireAuth, commentHandler.UpdateCommentHandler)
		subastas.DELETE("/:id_subasta/comentarios/:id_comentario", RequireAuth, commentHandler.DeleteCommentHandler)
	}

	// Listings scoped to the authenticated caller.
	api.GET("/misSubastas", RequireAuth, auctionHandler.MyAuctionsHandler)
	api.GET("/misPujas", RequireAuth, bidHandler.MyBidsHandler)
	api.GET("/misValoraciones", RequireAuth, ratingHandler.MyRatingsHandler)
	api.GET("/misComentarios", RequireAuth, commentHandler.MyCommentsHandler)

	return router
}
