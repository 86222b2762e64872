package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// --- POS payloads ---
//
// The POS channel sends money amounts as strings; they are parsed with
// decimal and rejected record-by-record, a bad row never fails the batch.

type PosOrderItem struct {
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
	UnitPrice   string `json:"unit_price" binding:"required"`
	Discount    string `json:"discount"`
}

type PosOrderRecord struct {
	PosCode       string `json:"pos_code" binding:"required"`
	CustomerPhone string `json:"customer_phone"`
	CustomerName  string `json:"customer_name"`

	Paid          string `json:"paid"`
	ShippingFee   string `json:"shipping_fee"`
	Discount      string `json:"discount"`
	PaymentMethod string `json:"payment_method"`

	RecipientName  string `json:"recipient_name"`
	RecipientPhone string `json:"recipient_phone"`
	Street         string `json:"street"`
	Ward           string `json:"ward"`
	District       string `json:"district"`
	Province       string `json:"province"`

	Items []PosOrderItem `json:"items"`
}

type PosSyncRequest struct {
	Orders []PosOrderRecord `json:"orders" binding:"required"`
}

// PosSyncSummary reports the batch outcome. Skipped covers both records the
// validator rejected and orders that already moved past the new status.
type PosSyncSummary struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

type PosService interface {
	SyncOrders(ctx context.Context, req PosSyncRequest, actor string) (PosSyncSummary, error)
}

type posService struct {
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	auditRepo    repository.AuditRepository
	seqSvc       SequenceService
	customerSvc  CustomerService
	txManager    repository.TransactionManager
	log          *zap.Logger
}

func NewPosService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	auditRepo repository.AuditRepository,
	seqSvc SequenceService,
	customerSvc CustomerService,
	txManager repository.TransactionManager,
	log *zap.Logger,
) PosService {
	if log == nil {
		log = zap.NewNop()
	}
	return &posService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		auditRepo:    auditRepo,
		seqSvc:       seqSvc,
		customerSvc:  customerSvc,
		txManager:    txManager,
		log:          log,
	}
}

func parseAmount(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative amount %q", raw)
	}
	return d.Round(2).InexactFloat64(), nil
}

// SyncOrders upserts each record keyed by PosCode. Unknown codes create a
// new order; known codes update it while it is still new; anything further
// along the lifecycle is skipped. Each record commits in its own
// transaction.
func (s *posService) SyncOrders(ctx context.Context, req PosSyncRequest, actor string) (PosSyncSummary, error) {
	var summary PosSyncSummary

	for i, record := range req.Orders {
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			existing, err := s.orderRepo.FindByPosCode(txCtx, record.PosCode)
			switch {
			case err == nil:
				updated, err := s.updateFromRecord(txCtx, existing, record)
				if err != nil {
					return err
				}
				if updated {
					summary.Updated++
				} else {
					summary.Skipped++
				}
				return nil
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := s.createFromRecord(txCtx, record); err != nil {
					return err
				}
				summary.Created++
				return nil
			default:
				return fmt.Errorf("failed to look up pos code: %w", err)
			}
		})
		if err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("record %d (%s): %v", i, record.PosCode, err))
			s.log.Warn("pos record rejected",
				zap.Int("index", i),
				zap.String("pos_code", record.PosCode),
				zap.Error(err))
		}
	}

	entry := auditEntry(actor, model.ActionPosSync, "", "")
	entry.Details = fmt.Sprintf(`{"created":%d,"updated":%d,"skipped":%d}`,
		summary.Created, summary.Updated, summary.Skipped)
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return summary, fmt.Errorf("failed to write audit log: %w", err)
	}

	s.log.Info("pos sync finished",
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped))

	return summary, nil
}

func (s *posService) buildPosItems(ctx context.Context, payloads []PosOrderItem) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, 0, len(payloads))
	for i, p := range payloads {
		price, err := parseAmount(p.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		itemDiscount, err := parseAmount(p.Discount)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		item := model.OrderItem{
			ProductCode: p.ProductCode,
			ProductName: p.ProductName,
			Quantity:    p.Quantity,
			UnitPrice:   price,
			Discount:    itemDiscount,
		}
		// Best-effort catalog link; POS codes outside the catalog stay as
		// free-form snapshots.
		if p.ProductCode != "" {
			if product, err := s.productRepo.FindByCode(ctx, p.ProductCode); err == nil {
				item.ProductID = &product.ID
				if item.ProductName == "" {
					item.ProductName = product.Name
				}
			}
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

func (s *posService) createFromRecord(ctx context.Context, record PosOrderRecord) error {
	paid, err := parseAmount(record.Paid)
	if err != nil {
		return err
	}
	shippingFee, err := parseAmount(record.ShippingFee)
	if err != nil {
		return err
	}
	discount, err := parseAmount(record.Discount)
	if err != nil {
		return err
	}

	items, err := s.buildPosItems(ctx, record.Items)
	if err != nil {
		return err
	}

	orderNumber, err := s.seqSvc.NextOrderNumber(ctx)
	if err != nil {
		return err
	}

	method := record.PaymentMethod
	if method == "" {
		method = model.PaymentMethodCOD
	}

	var customerID *uuid.UUID
	if record.CustomerPhone != "" {
		existing, err := s.customerRepo.FindByPhone(ctx, record.CustomerPhone)
		switch {
		case err == nil:
			customerID = &existing.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			name := record.CustomerName
			if name == "" {
				name = record.CustomerPhone
			}
			customer := &model.Customer{Name: name, Phone: record.CustomerPhone}
			if err := s.customerRepo.Create(ctx, customer); err != nil {
				return fmt.Errorf("failed to create customer: %w", err)
			}
			customerID = &customer.ID
		default:
			return fmt.Errorf("failed to look up customer: %w", err)
		}
	}

	order := &model.Order{
		OrderNumber: orderNumber,
		Status:      model.StatusNew,
		CustomerID:  customerID,
		PosCode:     record.PosCode,
		Items:       items,
		Payment: model.PaymentInfo{
			DiscountAmount: discount,
			ShippingFee:    shippingFee,
			Paid:           paid,
			Method:         method,
		},
		Shipping: model.ShippingInfo{
			RecipientName:  record.RecipientName,
			RecipientPhone: record.RecipientPhone,
			Street:         record.Street,
			Ward:           record.Ward,
			District:       record.District,
			Province:       record.Province,
		},
	}
	applyTotals(order)

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	if customerID != nil {
		if err := s.customerSvc.RecomputeStats(ctx, *customerID); err != nil {
			return err
		}
	}
	return nil
}

// updateFromRecord refreshes payment and recipient fields while the order is
// still new. Returns false when the order moved on and the record is stale.
func (s *posService) updateFromRecord(ctx context.Context, order *model.Order, record PosOrderRecord) (bool, error) {
	if order.Status != model.StatusNew {
		return false, nil
	}

	paid, err := parseAmount(record.Paid)
	if err != nil {
		return false, err
	}

	if len(record.Items) > 0 {
		items, err := s.buildPosItems(ctx, record.Items)
		if err != nil {
			return false, err
		}
		if err := s.orderRepo.ReplaceItems(ctx, order.ID, items); err != nil {
			return false, fmt.Errorf("failed to replace order items: %w", err)
		}
		order.Items = items
		applyTotals(order)
		if err := s.orderRepo.SaveTotals(ctx, order); err != nil {
			return false, fmt.Errorf("failed to save order totals: %w", err)
		}
	}

	patch := model.OrderPatch{Paid: &paid}
	if record.RecipientName != "" {
		patch.RecipientName = &record.RecipientName
	}
	if record.RecipientPhone != "" {
		patch.RecipientPhone = &record.RecipientPhone
	}

	if _, err := s.orderRepo.UpdateOrder(ctx, order.ID, patch); err != nil {
		return false, fmt.Errorf("failed to update order: %w", err)
	}

	if order.CustomerID != nil {
		if err := s.customerSvc.RecomputeStats(ctx, *order.CustomerID); err != nil {
			return false, err
		}
	}
	return true, nil
}
