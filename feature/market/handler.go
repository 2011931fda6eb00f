package market

import (
	"errors"
	"strconv"

	"github.com/Sydwelll/nft-marketplace-backend/core/logger"
	"github.com/Sydwelll/nft-marketplace-backend/core/utils"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/journal"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/ledger"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the marketplace.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the marketplace routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/market")
	group.Get("/operator", h.HandleGetOperator)
	group.Get("/events", h.HandleListEvents)

	group.Post("/items", h.HandleMint)
	group.Get("/items/:id", h.HandleGetItem)
	group.Get("/items/:id/owner", h.HandleGetOwner)
	group.Get("/items/:id/price", h.HandleGetPrice)
	group.Post("/items/:id/purchase", h.HandlePurchase)
	group.Post("/items/:id/burn", h.HandleBurn)

	group.Get("/accounts/:account/balance", h.HandleGetBalance)
	group.Post("/accounts/:account/deposit", h.HandleDeposit)
}

// MintBody is the body of POST /market/items.
type MintBody struct {
	To          string `json:"to"`
	ResourceURI string `json:"resource_uri"`
	ForSale     bool   `json:"for_sale"`
	// Price is a decimal amount in whole currency units, e.g. "1.5".
	Price string `json:"price"`
}

// PurchaseBody is the body of POST /market/items/:id/purchase.
type PurchaseBody struct {
	Buyer   string `json:"buyer"`
	Payment string `json:"payment"`
}

// BurnBody is the body of POST /market/items/:id/burn.
type BurnBody struct {
	Caller string `json:"caller"`
}

// DepositBody is the body of POST /market/accounts/:account/deposit.
type DepositBody struct {
	Amount string `json:"amount"`
}

// ItemResponse describes an item. Amounts are strings in the smallest unit,
// with an _eth twin in whole units.
type ItemResponse struct {
	ID           string `json:"id"`
	Owner        string `json:"owner"`
	ResourceURI  string `json:"resource_uri"`
	ForSale      bool   `json:"for_sale"`
	SalePrice    string `json:"sale_price"`
	SalePriceEth string `json:"sale_price_eth"`
}

// SettlementResponse describes the transfers of a purchase.
type SettlementResponse struct {
	ID         string `json:"id"`
	Buyer      string `json:"buyer"`
	Seller     string `json:"seller"`
	Payment    string `json:"payment"`
	Proceeds   string `json:"proceeds"`
	Operator   string `json:"operator"`
	Commission string `json:"commission"`
}

// BalanceResponse describes the funds of an account.
type BalanceResponse struct {
	Account    string `json:"account"`
	Balance    string `json:"balance"`
	BalanceEth string `json:"balance_eth"`
}

// NewItemResponse renders an item for API and CLI output.
func NewItemResponse(item ledger.Item) ItemResponse {
	return ItemResponse{
		ID:           item.ID.String(),
		Owner:        item.Owner.String(),
		ResourceURI:  item.ResourceURI,
		ForSale:      item.ForSale,
		SalePrice:    item.SalePrice.String(),
		SalePriceEth: utils.FormatEther(item.SalePrice.Int()),
	}
}

func newBalanceResponse(account ledger.Account, amount ledger.Amount) BalanceResponse {
	return BalanceResponse{
		Account:    account.Normalize().String(),
		Balance:    amount.String(),
		BalanceEth: utils.FormatEther(amount.Int()),
	}
}

// HandleMint mints a new item.
// @Summary Mint Item
// @Description Create a new item owned by the recipient, optionally listed at a fixed price.
// @Tags market
// @Accept json
// @Produce json
// @Param request body MintBody true "Mint request"
// @Success 201 {object} map[string]string "Minted item id"
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /market/items [post]
func (h *Handler) HandleMint(c *fiber.Ctx) error {
	var body MintBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	var price ledger.Amount
	if body.Price != "" {
		wei, err := utils.ParseEther(body.Price)
		if err != nil {
			return badRequest(c, err.Error())
		}
		price = ledger.AmountFromInt(wei)
	}

	id, err := h.service.Mint(c.Context(), MintRequest{
		To:          ledger.Account(body.To),
		ResourceURI: body.ResourceURI,
		ForSale:     body.ForSale,
		SalePrice:   price,
	})
	if err != nil {
		return h.fail(c, "Mint failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id.String()})
}

// HandleGetItem returns an item.
// @Summary Get Item
// @Tags market
// @Produce json
// @Param id path int true "Item id"
// @Success 200 {object} ItemResponse "Item"
// @Failure 404 {object} map[string]string "Nonexistent item"
// @Router /market/items/{id} [get]
func (h *Handler) HandleGetItem(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	item, err := h.service.Item(c.Context(), id)
	if err != nil {
		return h.fail(c, "Item lookup failed", err)
	}
	return c.JSON(NewItemResponse(item))
}

// HandleGetOwner returns the owner of an item.
// @Summary Get Item Owner
// @Tags market
// @Produce json
// @Param id path int true "Item id"
// @Success 200 {object} map[string]string "Owner"
// @Failure 404 {object} map[string]string "Nonexistent item"
// @Router /market/items/{id}/owner [get]
func (h *Handler) HandleGetOwner(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	owner, err := h.service.OwnerOf(c.Context(), id)
	if err != nil {
		return h.fail(c, "Owner lookup failed", err)
	}
	return c.JSON(fiber.Map{"id": id.String(), "owner": owner.String()})
}

// HandleGetPrice returns the stored sale price of an item.
// @Summary Get Item Sale Price
// @Tags market
// @Produce json
// @Param id path int true "Item id"
// @Success 200 {object} map[string]string "Sale price"
// @Failure 404 {object} map[string]string "Nonexistent item"
// @Router /market/items/{id}/price [get]
func (h *Handler) HandleGetPrice(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	price, err := h.service.SalePrice(c.Context(), id)
	if err != nil {
		return h.fail(c, "Price lookup failed", err)
	}
	return c.JSON(fiber.Map{
		"id":             id.String(),
		"sale_price":     price.String(),
		"sale_price_eth": utils.FormatEther(price.Int()),
	})
}

// HandlePurchase buys a listed item.
// @Summary Purchase Item
// @Description Pay exactly the sale price; the seller receives 90% and the operator 10%.
// @Tags market
// @Accept json
// @Produce json
// @Param id path int true "Item id"
// @Param request body PurchaseBody true "Purchase request"
// @Success 200 {object} SettlementResponse "Settlement"
// @Failure 400 {object} map[string]string "Incorrect payment"
// @Failure 404 {object} map[string]string "Nonexistent item"
// @Failure 409 {object} map[string]string "Not for sale or insufficient funds"
// @Router /market/items/{id}/purchase [post]
func (h *Handler) HandlePurchase(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	var body PurchaseBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	payment, err := utils.ParseEther(body.Payment)
	if err != nil {
		return badRequest(c, err.Error())
	}

	s, err := h.service.Purchase(c.Context(), id, ledger.AmountFromInt(payment), ledger.Account(body.Buyer))
	if err != nil {
		return h.fail(c, "Purchase failed", err)
	}
	return c.JSON(SettlementResponse{
		ID:         s.ItemID.String(),
		Buyer:      s.Payer.String(),
		Seller:     s.Seller.String(),
		Payment:    s.Payment.String(),
		Proceeds:   s.Proceeds.String(),
		Operator:   s.Operator.String(),
		Commission: s.Commission.String(),
	})
}

// HandleBurn destroys an item.
// @Summary Burn Item
// @Description Permanently remove an item. Only its owner may burn it.
// @Tags market
// @Accept json
// @Produce json
// @Param id path int true "Item id"
// @Param request body BurnBody true "Burn request"
// @Success 200 {object} map[string]string "Burned"
// @Failure 403 {object} map[string]string "Not authorized"
// @Failure 404 {object} map[string]string "Nonexistent item"
// @Router /market/items/{id}/burn [post]
func (h *Handler) HandleBurn(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	var body BurnBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.service.Burn(c.Context(), id, ledger.Account(body.Caller)); err != nil {
		return h.fail(c, "Burn failed", err)
	}
	return c.JSON(fiber.Map{"id": id.String(), "status": "burned"})
}

// HandleGetBalance returns the funds of an account.
// @Summary Get Balance
// @Tags market
// @Produce json
// @Param account path string true "Account"
// @Success 200 {object} BalanceResponse "Balance"
// @Router /market/accounts/{account}/balance [get]
func (h *Handler) HandleGetBalance(c *fiber.Ctx) error {
	account := ledger.Account(c.Params("account"))
	amount, err := h.service.Balance(c.Context(), account)
	if err != nil {
		return h.fail(c, "Balance lookup failed", err)
	}
	return c.JSON(newBalanceResponse(account, amount))
}

// HandleDeposit credits funds to an account.
// @Summary Deposit Funds
// @Tags market
// @Accept json
// @Produce json
// @Param account path string true "Account"
// @Param request body DepositBody true "Deposit request"
// @Success 200 {object} BalanceResponse "New balance"
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /market/accounts/{account}/deposit [post]
func (h *Handler) HandleDeposit(c *fiber.Ctx) error {
	account := ledger.Account(c.Params("account"))
	var body DepositBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	amount, err := utils.ParseEther(body.Amount)
	if err != nil {
		return badRequest(c, err.Error())
	}

	balance, err := h.service.Deposit(c.Context(), account, ledger.AmountFromInt(amount))
	if err != nil {
		return h.fail(c, "Deposit failed", err)
	}
	return c.JSON(newBalanceResponse(account, balance))
}

// HandleGetOperator returns the marketplace operator.
// @Summary Get Operator
// @Tags market
// @Produce json
// @Success 200 {object} map[string]string "Operator"
// @Failure 503 {object} map[string]string "Ledger not deployed"
// @Router /market/operator [get]
func (h *Handler) HandleGetOperator(c *fiber.Ctx) error {
	operator, err := h.service.Operator(c.Context())
	if err != nil {
		return h.fail(c, "Operator lookup failed", err)
	}
	next, err := h.service.NextID(c.Context())
	if err != nil {
		return h.fail(c, "Operator lookup failed", err)
	}
	return c.JSON(fiber.Map{
		"operator":           operator.String(),
		"commission_percent": ledger.CommissionPercent,
		"next_id":            next.String(),
	})
}

// HandleListEvents lists journal entries.
// @Summary List Events
// @Description Returns ledger events with a sequence number greater than `after`, oldest first.
// @Tags market
// @Produce json
// @Param after query int false "Return events after this sequence number"
// @Param limit query int false "Maximum number of events (default 100)"
// @Success 200 {array} journal.Entry "Events"
// @Router /market/events [get]
func (h *Handler) HandleListEvents(c *fiber.Ctx) error {
	after, err := strconv.ParseUint(c.Query("after", "0"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid after")
	}
	limit := c.QueryInt("limit", 100)
	if limit <= 0 || limit > 1000 {
		return badRequest(c, "limit must be between 1 and 1000")
	}

	rows, err := h.service.Events(c.Context(), after, limit)
	if err != nil {
		return h.fail(c, "Event listing failed", err)
	}
	entries := make([]journal.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, journal.NewEntry(r))
	}
	return c.JSON(entries)
}

func itemID(c *fiber.Ctx) (ledger.ItemID, error) {
	id, err := utils.ParseID(c.Params("id"))
	if err != nil {
		return 0, err
	}
	return ledger.ItemID(id), nil
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// fail maps ledger errors to HTTP statuses. Unexpected errors are logged.
func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		l := logger.WithRayID(h.service.logger, c)
		l.Error(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// StatusFor returns the HTTP status matching err.
func StatusFor(err error) int {
	switch {
	case ledger.IsValidation(err):
		return fiber.StatusBadRequest
	case errors.Is(err, ledger.ErrNonexistentItem):
		return fiber.StatusNotFound
	case errors.Is(err, ledger.ErrNotAuthorized):
		return fiber.StatusForbidden
	case ledger.IsState(err), errors.Is(err, store.ErrAlreadyDeployed):
		return fiber.StatusConflict
	case errors.Is(err, store.ErrNotDeployed):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
