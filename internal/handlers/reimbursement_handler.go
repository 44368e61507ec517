package handlers

import (
	"context"
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"craftacademy/internal/models"
	"craftacademy/internal/service"
)

// ReimbursementHandler handles the child-facing prize shop
type ReimbursementHandler struct {
	reimbursementService *service.ReimbursementService
	authService          *service.AuthService
	emailService         *service.EmailService
	templates            *template.Template
}

// NewReimbursementHandler creates a new reimbursement handler
func NewReimbursementHandler(reimbursementService *service.ReimbursementService, authService *service.AuthService, emailService *service.EmailService, templates *template.Template) *ReimbursementHandler {
	return &ReimbursementHandler{
		reimbursementService: reimbursementService,
		authService:          authService,
		emailService:         emailService,
		templates:            templates,
	}
}

// ShowShop renders the prize shop with the catalog, point balance, weekly
// cooldown state and redemption history.
func (h *ReimbursementHandler) ShowShop(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())
	if child == nil {
		http.Redirect(w, r, "/select", http.StatusSeeOther)
		return
	}

	h.renderShop(w, child, "", "")
}

// Redeem spends points on a catalog item
func (h *ReimbursementHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	child := GetChildFromContext(r.Context())
	if child == nil {
		http.Redirect(w, r, "/select", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	itemName := r.FormValue("item_name")

	remaining, err := h.reimbursementService.Process(child.ID, itemName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			h.renderShop(w, child, "That prize isn't in the shop", "")
		case errors.Is(err, service.ErrWeeklyLimitUsed):
			h.renderShop(w, child, "You've already picked a prize this week. The shop restocks on Friday!", "")
		case errors.Is(err, service.ErrInsufficientPoints):
			h.renderShop(w, child, "Not enough points yet. Keep creating!", "")
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error processing redemption", err)
		}
		return
	}

	h.sendReceipts(child, itemName, remaining)

	h.renderShop(w, child, "", "Prize unlocked! Show this screen to a parent.")
}

// sendReceipts emails every parent with an address on file
func (h *ReimbursementHandler) sendReceipts(child *models.Child, itemName string, remaining int) {
	if h.emailService == nil || !h.emailService.IsEnabled() {
		return
	}

	item, err := h.reimbursementService.ItemByName(itemName)
	if err != nil || item == nil {
		return
	}

	parents, err := h.authService.GetParents()
	if err != nil {
		log.Printf("Error listing parents for receipt: %v", err)
		return
	}

	for _, parent := range parents {
		if parent.Email == "" {
			continue
		}
		parent := parent
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := h.emailService.SendReimbursementReceipt(ctx, parent.Email, parent.Name,
				child.Name, item.Name, item.PointsCost, remaining); err != nil {
				log.Printf("Error sending reimbursement receipt: %v", err)
			}
		}()
	}
}

func (h *ReimbursementHandler) renderShop(w http.ResponseWriter, child *models.Child, errMsg, success string) {
	items, err := h.reimbursementService.Catalog()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading catalog", err)
		return
	}

	points, err := h.reimbursementService.TotalPoints(child.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting points", err)
		return
	}

	weekly, err := h.reimbursementService.WeeklyStatus(child.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting weekly status", err)
		return
	}

	history, err := h.reimbursementService.History(child.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error getting history", err)
		return
	}

	data := ShopViewData{
		Title:        "Prize Shop - Craft Academy",
		Child:        child,
		Items:        items,
		Points:       points,
		WeeklyStatus: weekly,
		History:      history,
		Error:        errMsg,
		Success:      success,
	}

	if err := h.templates.ExecuteTemplate(w, "shop.tmpl", data); err != nil {
		log.Printf("Error rendering shop template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}
