package status

import "github.com/gin-gonic/gin"

type IHandler interface {
	Get(c *gin.Context)
	Merge(c *gin.Context)
	Reset(c *gin.Context)
}
