package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	viewsUC "github.com/filipposta/legacy-premium-api/internal/application/usecase/views"
	"github.com/filipposta/legacy-premium-api/pkg/apperror"
)

type ViewsHandler struct {
	reconcileUC *viewsUC.ReconcileUseCase
	cleanUC     *viewsUC.CleanUseCase
}

func NewViewsHandler(reconcileUC *viewsUC.ReconcileUseCase, cleanUC *viewsUC.CleanUseCase) *ViewsHandler {
	return &ViewsHandler{reconcileUC: reconcileUC, cleanUC: cleanUC}
}

// ListProfileViews returns the deduplicated "who viewed me" list for
// the signed-in user.
func (h *ViewsHandler) ListProfileViews(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}

	output, err := h.reconcileUC.Execute(c.Request.Context(), viewsUC.ReconcileInput{OwnerID: userID})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"views": ToReconciledViewDTOs(output.Views)})
}

// CleanProfileViews is the user-triggered maintenance pass over a
// wider window of raw events.
func (h *ViewsHandler) CleanProfileViews(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}

	output, err := h.cleanUC.Execute(c.Request.Context(), viewsUC.CleanInput{OwnerID: userID})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted": output.Deleted,
		"views":   ToReconciledViewDTOs(output.Views),
	})
}
