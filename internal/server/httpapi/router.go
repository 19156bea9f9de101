package httpapi

import (
	"github.com/dmitrijs2005/coursevault/internal/logging"
	"github.com/dmitrijs2005/coursevault/internal/server/auth"
	"github.com/gin-gonic/gin"
)

// formOverhead is the allowance for multipart framing and text fields on
// top of the file itself.
const formOverhead = 64 * 1024

type handlers struct {
	Deps
	log logging.Logger
}

func newRouter(opts Options, l logging.Logger, d Deps) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = opts.MaxUploadSize + formOverhead
	r.Use(gin.Recovery(), RequestLogger(l), BodyLimit(opts.MaxUploadSize+formOverhead))

	h := &handlers{Deps: d, log: l}

	api := r.Group("/api")
	api.Use(auth.LoadSession(opts.SecretKey), d.Guard.Middleware())
	{
		api.GET("/materials", h.listMaterials)
		api.GET("/materials/:id", h.getMaterial)
		api.GET("/materials/:id/comments", h.listComments)
		api.GET("/courses", h.listCourses)
		api.GET("/users", h.listUsers)
	}

	protected := api.Group("/")
	protected.Use(auth.RequireSession())
	{
		protected.GET("/csrf", h.csrfToken)
		protected.GET("/users/me/likes", h.myLikes)
		protected.POST("/courses/:id/materials", h.uploadMaterial)
		protected.DELETE("/materials/:id", h.deleteMaterial)
		protected.POST("/materials/:id/like", h.likeMaterial)
		protected.POST("/materials/:id/comments", h.addComment)
	}

	return r
}
