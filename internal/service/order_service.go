package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/repository"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// --- Order DTOs ---

type OrderItemPayload struct {
	ProductID   *string `json:"product_id"`
	ProductCode string  `json:"product_code"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity" binding:"required,gt=0"`
	// UnitPrice overrides the catalog price when set; otherwise the product's
	// current price is snapshotted.
	UnitPrice *float64 `json:"unit_price"`
	Discount  float64  `json:"discount"`
}

type ShippingPayload struct {
	RecipientName  string `json:"recipient_name"`
	RecipientPhone string `json:"recipient_phone"`
	Street         string `json:"street"`
	Ward           string `json:"ward"`
	District       string `json:"district"`
	Province       string `json:"province"`
	WeightGram     int    `json:"weight_gram"`
	LengthCm       int    `json:"length_cm"`
	WidthCm        int    `json:"width_cm"`
	HeightCm       int    `json:"height_cm"`
	FreeShipping   bool   `json:"free_shipping"`
}

type CreateOrderRequest struct {
	CustomerID *string `json:"customer_id" binding:"omitempty,uuid"`
	// CustomerPhone resolves the customer implicitly when CustomerID is not
	// sent: an existing customer with this phone is linked, otherwise one is
	// created from phone + name.
	CustomerPhone string `json:"customer_phone"`
	CustomerName  string `json:"customer_name"`

	Items []OrderItemPayload `json:"items"`

	DiscountAmount float64 `json:"discount_amount" binding:"gte=0"`
	ShippingFee    float64 `json:"shipping_fee" binding:"gte=0"`
	TaxAmount      float64 `json:"tax_amount" binding:"gte=0"`
	AdditionalFee  float64 `json:"additional_fee" binding:"gte=0"`
	Paid           float64 `json:"paid" binding:"gte=0"`
	BankTransfer   float64 `json:"bank_transfer" binding:"gte=0"`
	PaymentMethod  string  `json:"payment_method" binding:"omitempty,oneof=cod bank_transfer cash"`

	Shipping ShippingPayload `json:"shipping"`

	Tags       []string `json:"tags"`
	AssignedTo string   `json:"assigned_to"`
	Marketer   string   `json:"marketer"`
}

// UpdateOrderRequest is a field-level patch. Status is deliberately absent:
// status only moves through the workflow engine endpoint.
type UpdateOrderRequest struct {
	CustomerID *string `json:"customer_id" binding:"omitempty,uuid"`

	Items *[]OrderItemPayload `json:"items"` // full replacement when sent

	Paid           *float64 `json:"paid" binding:"omitempty,gte=0"`
	DiscountAmount *float64 `json:"discount_amount" binding:"omitempty,gte=0"`
	ShippingFee    *float64 `json:"shipping_fee" binding:"omitempty,gte=0"`
	TaxAmount      *float64 `json:"tax_amount" binding:"omitempty,gte=0"`
	AdditionalFee  *float64 `json:"additional_fee" binding:"omitempty,gte=0"`
	BankTransfer   *float64 `json:"bank_transfer" binding:"omitempty,gte=0"`
	PaymentMethod  *string  `json:"payment_method" binding:"omitempty,oneof=cod bank_transfer cash"`

	RecipientName  *string `json:"recipient_name"`
	RecipientPhone *string `json:"recipient_phone"`
	TrackingNumber *string `json:"tracking_number"`

	AssignedTo *string   `json:"assigned_to"`
	Marketer   *string   `json:"marketer"`
	Tags       *[]string `json:"tags"`
}

type AddNoteRequest struct {
	Type    string `json:"type" binding:"omitempty,oneof=internal easy_print discussion"`
	Content string `json:"content" binding:"required"`
}

// --- Interface ---

type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest, actor string) (*model.Order, error)
	UpdateOrder(ctx context.Context, id string, req UpdateOrderRequest, actor string) (*model.Order, error)
	DeleteOrder(ctx context.Context, id string, actor string) error
	GetOrderByID(ctx context.Context, id string) (*model.Order, error)
	GetOrders(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error)
	AddNote(ctx context.Context, id string, req AddNoteRequest, actor string) (*model.Order, error)
	PrintOrder(ctx context.Context, id string, actor string) (int, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	auditRepo    repository.AuditRepository
	seqSvc       SequenceService
	customerSvc  CustomerService
	txManager    repository.TransactionManager
	hub          workflow.Broadcaster
	log          *zap.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	auditRepo repository.AuditRepository,
	seqSvc SequenceService,
	customerSvc CustomerService,
	txManager repository.TransactionManager,
	hub workflow.Broadcaster,
	log *zap.Logger,
) OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &orderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		auditRepo:    auditRepo,
		seqSvc:       seqSvc,
		customerSvc:  customerSvc,
		txManager:    txManager,
		hub:          hub,
		log:          log,
	}
}

// buildItems resolves each payload against the catalog and snapshots
// code/name/price into the line item. Line totals use decimal arithmetic and
// round half-up to 2 places.
func (s *orderService) buildItems(ctx context.Context, payloads []OrderItemPayload) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, 0, len(payloads))
	for i, p := range payloads {
		item := model.OrderItem{
			ProductCode: p.ProductCode,
			ProductName: p.ProductName,
			Quantity:    p.Quantity,
			Discount:    p.Discount,
		}

		var product *model.Product
		var err error
		switch {
		case p.ProductID != nil:
			pid, parseErr := uuid.Parse(*p.ProductID)
			if parseErr != nil {
				return nil, fmt.Errorf("item %d: invalid product id: %w", i, parseErr)
			}
			product, err = s.productRepo.FindByID(ctx, pid)
		case p.ProductCode != "":
			product, err = s.productRepo.FindByCode(ctx, p.ProductCode)
		}
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("item %d: product not found", i)
			}
			return nil, fmt.Errorf("item %d: failed to load product: %w", i, err)
		}
		if product != nil {
			item.ProductID = &product.ID
			item.ProductCode = product.Code
			item.ProductName = product.Name
			item.UnitPrice = product.Price
		}
		if p.UnitPrice != nil {
			item.UnitPrice = *p.UnitPrice
		}

		total := decimal.NewFromFloat(item.UnitPrice).
			Mul(decimal.NewFromInt(int64(item.Quantity))).
			Sub(decimal.NewFromFloat(item.Discount)).
			Round(2)
		item.Total = total.InexactFloat64()

		items = append(items, item)
	}
	return items, nil
}

// applyTotals recomputes the payment block from the line items and the fee
// fields already set on the order.
func applyTotals(order *model.Order) {
	total := decimal.Zero
	for _, item := range order.Items {
		total = total.Add(decimal.NewFromFloat(item.Total))
	}

	final := total.
		Sub(decimal.NewFromFloat(order.Payment.DiscountAmount)).
		Add(decimal.NewFromFloat(order.Payment.ShippingFee)).
		Add(decimal.NewFromFloat(order.Payment.TaxAmount)).
		Add(decimal.NewFromFloat(order.Payment.AdditionalFee)).
		Round(2)
	if final.IsNegative() {
		final = decimal.Zero
	}

	order.Payment.TotalAmount = total.Round(2).InexactFloat64()
	order.Payment.FinalAmount = final.InexactFloat64()

	remaining := final.Sub(decimal.NewFromFloat(order.Payment.Paid))
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	order.Payment.Remaining = remaining.InexactFloat64()
	if order.Payment.Method == model.PaymentMethodCOD {
		order.Payment.COD = order.Payment.Remaining
	}
}

// resolveCustomer returns the customer to link, creating one from phone+name
// when no existing record matches.
func (s *orderService) resolveCustomer(ctx context.Context, req CreateOrderRequest) (*uuid.UUID, error) {
	if req.CustomerID != nil {
		cid, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("invalid customer id: %w", err)
		}
		if _, err := s.customerRepo.FindByID(ctx, cid); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.New("customer not found")
			}
			return nil, fmt.Errorf("failed to load customer: %w", err)
		}
		return &cid, nil
	}

	if req.CustomerPhone == "" {
		return nil, nil
	}

	existing, err := s.customerRepo.FindByPhone(ctx, req.CustomerPhone)
	if err == nil {
		return &existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up customer by phone: %w", err)
	}

	name := req.CustomerName
	if name == "" {
		name = req.Shipping.RecipientName
	}
	if name == "" {
		name = req.CustomerPhone
	}
	customer := &model.Customer{Name: name, Phone: req.CustomerPhone}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &customer.ID, nil
}

func (s *orderService) CreateOrder(ctx context.Context, req CreateOrderRequest, actor string) (*model.Order, error) {
	method := req.PaymentMethod
	if method == "" {
		method = model.PaymentMethodCOD
	}

	var created *model.Order
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		customerID, err := s.resolveCustomer(txCtx, req)
		if err != nil {
			return err
		}

		items, err := s.buildItems(txCtx, req.Items)
		if err != nil {
			return err
		}

		orderNumber, err := s.seqSvc.NextOrderNumber(txCtx)
		if err != nil {
			return err
		}

		order := &model.Order{
			OrderNumber: orderNumber,
			Status:      model.StatusNew,
			CustomerID:  customerID,
			Items:       items,
			Payment: model.PaymentInfo{
				DiscountAmount: req.DiscountAmount,
				ShippingFee:    req.ShippingFee,
				TaxAmount:      req.TaxAmount,
				AdditionalFee:  req.AdditionalFee,
				Paid:           req.Paid,
				BankTransfer:   req.BankTransfer,
				Method:         method,
			},
			Shipping: model.ShippingInfo{
				RecipientName:  req.Shipping.RecipientName,
				RecipientPhone: req.Shipping.RecipientPhone,
				Street:         req.Shipping.Street,
				Ward:           req.Shipping.Ward,
				District:       req.Shipping.District,
				Province:       req.Shipping.Province,
				WeightGram:     req.Shipping.WeightGram,
				LengthCm:       req.Shipping.LengthCm,
				WidthCm:        req.Shipping.WidthCm,
				HeightCm:       req.Shipping.HeightCm,
				FreeShipping:   req.Shipping.FreeShipping,
			},
			Tags:       req.Tags,
			AssignedTo: req.AssignedTo,
			Marketer:   req.Marketer,
		}
		if order.Shipping.FreeShipping {
			order.Payment.ShippingFee = 0
		}
		applyTotals(order)

		if err := s.orderRepo.Create(txCtx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if err := s.writeAudit(txCtx, actor, model.ActionCreateOrder, order, map[string]interface{}{
			"order_number": order.OrderNumber,
			"final_amount": order.Payment.FinalAmount,
		}); err != nil {
			return err
		}

		if customerID != nil {
			if err := s.customerSvc.RecomputeStats(txCtx, *customerID); err != nil {
				return err
			}
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("order_number", created.OrderNumber),
		zap.Float64("final_amount", created.Payment.FinalAmount))
	if s.hub != nil {
		s.hub.BroadcastEvent("order.created", map[string]interface{}{
			"order_id":     created.ID,
			"order_number": created.OrderNumber,
		})
	}

	return s.orderRepo.FindByID(ctx, created.ID)
}

func (s *orderService) UpdateOrder(ctx context.Context, id string, req UpdateOrderRequest, actor string) (*model.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid order id: %w", err)
	}

	var updated *model.Order
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.orderRepo.FindByID(txCtx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("order not found")
			}
			return fmt.Errorf("failed to load order: %w", err)
		}
		previousCustomer := order.CustomerID

		if req.Items != nil {
			items, err := s.buildItems(txCtx, *req.Items)
			if err != nil {
				return err
			}
			if err := s.orderRepo.ReplaceItems(txCtx, orderID, items); err != nil {
				return fmt.Errorf("failed to replace order items: %w", err)
			}
			order.Items = items
			applyTotals(order)
			if err := s.orderRepo.SaveTotals(txCtx, order); err != nil {
				return fmt.Errorf("failed to save order totals: %w", err)
			}
		}

		patch := model.OrderPatch{
			Paid:           req.Paid,
			DiscountAmount: req.DiscountAmount,
			ShippingFee:    req.ShippingFee,
			TaxAmount:      req.TaxAmount,
			AdditionalFee:  req.AdditionalFee,
			BankTransfer:   req.BankTransfer,
			PaymentMethod:  req.PaymentMethod,
			RecipientName:  req.RecipientName,
			RecipientPhone: req.RecipientPhone,
			TrackingNumber: req.TrackingNumber,
			AssignedTo:     req.AssignedTo,
			Marketer:       req.Marketer,
			Tags:           req.Tags,
		}

		// Fee changes shift FinalAmount, so totals are rebuilt before the
		// patch runs the store's normalization.
		feesChanged := req.DiscountAmount != nil || req.ShippingFee != nil ||
			req.TaxAmount != nil || req.AdditionalFee != nil
		if feesChanged {
			if req.DiscountAmount != nil {
				order.Payment.DiscountAmount = *req.DiscountAmount
			}
			if req.ShippingFee != nil {
				order.Payment.ShippingFee = *req.ShippingFee
			}
			if req.TaxAmount != nil {
				order.Payment.TaxAmount = *req.TaxAmount
			}
			if req.AdditionalFee != nil {
				order.Payment.AdditionalFee = *req.AdditionalFee
			}
			applyTotals(order)
			if err := s.orderRepo.SaveTotals(txCtx, order); err != nil {
				return fmt.Errorf("failed to save order totals: %w", err)
			}
		}

		if order, err = s.orderRepo.UpdateOrder(txCtx, orderID, patch); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		if req.CustomerID != nil {
			cid, err := uuid.Parse(*req.CustomerID)
			if err != nil {
				return fmt.Errorf("invalid customer id: %w", err)
			}
			if _, err := s.customerRepo.FindByID(txCtx, cid); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errors.New("customer not found")
				}
				return fmt.Errorf("failed to load customer: %w", err)
			}
			if err := s.orderRepo.SetCustomer(txCtx, orderID, &cid); err != nil {
				return fmt.Errorf("failed to reassign customer: %w", err)
			}
			order.CustomerID = &cid
		}

		if err := s.writeAudit(txCtx, actor, model.ActionUpdateOrder, order, nil); err != nil {
			return err
		}

		// Reassignment touches two customers' statistics; both sides are
		// recomputed.
		if previousCustomer != nil {
			if err := s.customerSvc.RecomputeStats(txCtx, *previousCustomer); err != nil {
				return err
			}
		}
		if order.CustomerID != nil &&
			(previousCustomer == nil || *order.CustomerID != *previousCustomer) {
			if err := s.customerSvc.RecomputeStats(txCtx, *order.CustomerID); err != nil {
				return err
			}
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastEvent("order.updated", map[string]interface{}{
			"order_id":     updated.ID,
			"order_number": updated.OrderNumber,
		})
	}

	return s.orderRepo.FindByID(ctx, orderID)
}

func (s *orderService) DeleteOrder(ctx context.Context, id string, actor string) error {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid order id: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.orderRepo.FindByID(txCtx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("order not found")
			}
			return fmt.Errorf("failed to load order: %w", err)
		}

		if err := s.orderRepo.Delete(txCtx, orderID); err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}

		if err := s.writeAudit(txCtx, actor, model.ActionDeleteOrder, order, nil); err != nil {
			return err
		}

		if order.CustomerID != nil {
			if err := s.customerSvc.RecomputeStats(txCtx, *order.CustomerID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *orderService) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid order id: %w", err)
	}
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("order not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return order, nil
}

func (s *orderService) GetOrders(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error) {
	return s.orderRepo.List(ctx, filter)
}

func (s *orderService) AddNote(ctx context.Context, id string, req AddNoteRequest, actor string) (*model.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid order id: %w", err)
	}

	noteType := req.Type
	if noteType == "" {
		noteType = model.NoteTypeInternal
	}
	patch := model.OrderPatch{
		AppendNotes: []model.OrderNote{{
			Type:      noteType,
			Content:   req.Content,
			CreatedBy: actor,
		}},
	}

	order, err := s.orderRepo.UpdateOrder(ctx, orderID, patch)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("order not found")
		}
		return nil, fmt.Errorf("failed to add note: %w", err)
	}
	return order, nil
}

// PrintOrder bumps the print counter and audits the print. Returns the new
// counter value.
func (s *orderService) PrintOrder(ctx context.Context, id string, actor string) (int, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return 0, fmt.Errorf("invalid order id: %w", err)
	}

	var count int
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.orderRepo.FindByID(txCtx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("order not found")
			}
			return fmt.Errorf("failed to load order: %w", err)
		}

		count, err = s.orderRepo.IncrementPrintCount(txCtx, orderID)
		if err != nil {
			return fmt.Errorf("failed to increment print count: %w", err)
		}

		return s.writeAudit(txCtx, actor, model.ActionPrintOrder, order, map[string]interface{}{
			"print_count": count,
		})
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *orderService) writeAudit(ctx context.Context, actor, action string, order *model.Order, details map[string]interface{}) error {
	var uid *uuid.UUID
	if parsed, err := uuid.Parse(actor); err == nil {
		uid = &parsed
	}
	payload := ""
	if details != nil {
		raw, _ := json.Marshal(details)
		payload = string(raw)
	}
	entry := &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   order.ID.String(),
		EntityName: order.OrderNumber,
		Details:    payload,
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
