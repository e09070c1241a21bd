package service

// In-memory repository fakes. The Tx variants ignore the *gorm.DB argument:
// runTx passes nil when the repository has no live database, so service logic
// is exercised without Postgres.

import (
	"context"
	"time"

	"github.com/Grey-kingreys/magazin-back-sub000/internal/dto"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/model"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Store ─────────────────────────────────────────────────────────────────────

type fakeStoreRepo struct {
	stores map[uuid.UUID]*model.Store
}

func newFakeStoreRepo() *fakeStoreRepo {
	return &fakeStoreRepo{stores: make(map[uuid.UUID]*model.Store)}
}

func (r *fakeStoreRepo) add(balance int64) *model.Store {
	s := &model.Store{ID: uuid.New(), Name: "store", IsActive: true, Balance: balance}
	r.stores[s.ID] = s
	return s
}

func (r *fakeStoreRepo) Create(_ context.Context, s *model.Store) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.stores[s.ID] = s
	return nil
}

func (r *fakeStoreRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Store, error) {
	s, ok := r.stores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *fakeStoreRepo) CreditBalanceTx(_ *gorm.DB, id uuid.UUID, amount int64) error {
	s, ok := r.stores[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Balance += amount
	return nil
}

func (r *fakeStoreRepo) DebitBalanceTx(_ *gorm.DB, id uuid.UUID, amount int64) (bool, error) {
	s, ok := r.stores[id]
	if !ok || s.Balance < amount {
		return false, nil
	}
	s.Balance -= amount
	return true, nil
}

var _ repository.StoreRepository = (*fakeStoreRepo)(nil)

// ── Product ───────────────────────────────────────────────────────────────────

type fakeProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *fakeProductRepo) add(name string, price int64) *model.Product {
	p := &model.Product{ID: uuid.New(), SKU: uuid.NewString(), Name: name, Price: price, IsActive: true}
	r.products[p.ID] = p
	return p
}

func (r *fakeProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku && p.IsActive {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

// ── Stock ─────────────────────────────────────────────────────────────────────

type stockKey struct{ product, store uuid.UUID }

type fakeStockRepo struct {
	entries   map[stockKey]*model.StockEntry
	movements []model.StockMovement
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{entries: make(map[stockKey]*model.StockEntry)}
}

func (r *fakeStockRepo) seed(productID, storeID uuid.UUID, qty int) {
	r.entries[stockKey{productID, storeID}] = &model.StockEntry{
		ID: uuid.New(), ProductID: productID, StoreID: storeID, Quantity: qty,
	}
}

func (r *fakeStockRepo) quantity(productID, storeID uuid.UUID) int {
	if e, ok := r.entries[stockKey{productID, storeID}]; ok {
		return e.Quantity
	}
	return 0
}

func (r *fakeStockRepo) DB() *gorm.DB { return nil }

func (r *fakeStockRepo) FindEntry(_ context.Context, productID, storeID uuid.UUID) (*model.StockEntry, error) {
	e, ok := r.entries[stockKey{productID, storeID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (r *fakeStockRepo) FindEntryTx(_ *gorm.DB, productID, storeID uuid.UUID) (*model.StockEntry, error) {
	return r.FindEntry(context.Background(), productID, storeID)
}

func (r *fakeStockRepo) UpsertIncrementTx(_ *gorm.DB, productID, storeID uuid.UUID, qty int) error {
	k := stockKey{productID, storeID}
	if e, ok := r.entries[k]; ok {
		e.Quantity += qty
		return nil
	}
	r.entries[k] = &model.StockEntry{ID: uuid.New(), ProductID: productID, StoreID: storeID, Quantity: qty}
	return nil
}

func (r *fakeStockRepo) DecrementGuardedTx(_ *gorm.DB, productID, storeID uuid.UUID, qty int) (bool, error) {
	e, ok := r.entries[stockKey{productID, storeID}]
	if !ok || e.Quantity < qty {
		return false, nil
	}
	e.Quantity -= qty
	return true, nil
}

func (r *fakeStockRepo) SetQuantityTx(_ *gorm.DB, productID, storeID uuid.UUID, qty int) error {
	k := stockKey{productID, storeID}
	if e, ok := r.entries[k]; ok {
		e.Quantity = qty
		return nil
	}
	r.entries[k] = &model.StockEntry{ID: uuid.New(), ProductID: productID, StoreID: storeID, Quantity: qty}
	return nil
}

func (r *fakeStockRepo) CreateMovementTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeStockRepo) ListMovements(_ context.Context, filter dto.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if filter.ProductID != "" && m.ProductID.String() != filter.ProductID {
			continue
		}
		if filter.StoreID != "" && m.StoreID.String() != filter.StoreID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

var _ repository.StockRepository = (*fakeStockRepo)(nil)

// ── Finance ───────────────────────────────────────────────────────────────────

type fakeFinanceRepo struct {
	txs []model.StoreTransaction
}

func newFakeFinanceRepo() *fakeFinanceRepo { return &fakeFinanceRepo{} }

func (r *fakeFinanceRepo) DB() *gorm.DB { return nil }

func (r *fakeFinanceRepo) CreateTransactionTx(_ *gorm.DB, t *model.StoreTransaction) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now()
	r.txs = append(r.txs, *t)
	return nil
}

func (r *fakeFinanceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.StoreTransaction, error) {
	for i := range r.txs {
		if r.txs[i].ID == id {
			return &r.txs[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeFinanceRepo) HasReversal(_ context.Context, id uuid.UUID) (bool, error) {
	ref := "reversal:" + id.String()
	for _, t := range r.txs {
		if t.Reference == ref {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFinanceRepo) SumByStore(_ context.Context, storeID uuid.UUID) (int64, error) {
	var sum int64
	for _, t := range r.txs {
		if t.StoreID != storeID {
			continue
		}
		if t.Direction == model.DirectionCredit {
			sum += t.Amount
		} else {
			sum -= t.Amount
		}
	}
	return sum, nil
}

func (r *fakeFinanceRepo) List(_ context.Context, filter dto.StoreTransactionFilter) ([]model.StoreTransaction, int64, error) {
	var out []model.StoreTransaction
	for _, t := range r.txs {
		if filter.StoreID != "" && t.StoreID.String() != filter.StoreID {
			continue
		}
		if filter.Direction != "" && t.Direction != filter.Direction {
			continue
		}
		if filter.Category != "" && t.Category != filter.Category {
			continue
		}
		out = append(out, t)
	}
	return out, int64(len(out)), nil
}

var _ repository.FinanceRepository = (*fakeFinanceRepo)(nil)

// ── Register ──────────────────────────────────────────────────────────────────

type fakeRegisterRepo struct {
	regs map[uuid.UUID]*model.CashRegister
}

func newFakeRegisterRepo() *fakeRegisterRepo {
	return &fakeRegisterRepo{regs: make(map[uuid.UUID]*model.CashRegister)}
}

func (r *fakeRegisterRepo) DB() *gorm.DB { return nil }

func (r *fakeRegisterRepo) CreateTx(_ *gorm.DB, reg *model.CashRegister) error {
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	r.regs[reg.ID] = reg
	return nil
}

func (r *fakeRegisterRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CashRegister, error) {
	reg, ok := r.regs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return reg, nil
}

func (r *fakeRegisterRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.CashRegister, error) {
	reg, ok := r.regs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return reg, nil
}

func (r *fakeRegisterRepo) FindOpenByUserAndStore(_ context.Context, userID, storeID uuid.UUID) (*model.CashRegister, error) {
	for _, reg := range r.regs {
		if reg.UserID == userID && reg.StoreID == storeID && reg.Status == model.RegisterOpen {
			return reg, nil
		}
	}
	return nil, nil
}

func (r *fakeRegisterRepo) AddAvailableTx(_ *gorm.DB, id uuid.UUID, amount int64) (bool, error) {
	reg, ok := r.regs[id]
	if !ok || reg.Status != model.RegisterOpen {
		return false, nil
	}
	reg.AvailableAmount += amount
	return true, nil
}

func (r *fakeRegisterRepo) SubtractAvailableTx(_ *gorm.DB, id uuid.UUID, amount int64) (bool, error) {
	reg, ok := r.regs[id]
	if !ok || reg.Status != model.RegisterOpen || reg.AvailableAmount < amount {
		return false, nil
	}
	reg.AvailableAmount -= amount
	return true, nil
}

func (r *fakeRegisterRepo) CloseTx(_ *gorm.DB, reg *model.CashRegister) (bool, error) {
	stored, ok := r.regs[reg.ID]
	if !ok || stored.Status != model.RegisterOpen {
		return false, nil
	}
	stored.Status = model.RegisterClosed
	stored.ClosingAmount = reg.ClosingAmount
	stored.ExpectedAmount = reg.ExpectedAmount
	stored.Difference = reg.Difference
	stored.DeviationClass = reg.DeviationClass
	stored.Notes = reg.Notes
	stored.ClosedAt = reg.ClosedAt
	return true, nil
}

func (r *fakeRegisterRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.regs, id)
	return nil
}

func (r *fakeRegisterRepo) List(_ context.Context, storeID string, page, limit int) ([]model.CashRegister, int64, error) {
	var out []model.CashRegister
	for _, reg := range r.regs {
		if storeID != "" && reg.StoreID.String() != storeID {
			continue
		}
		out = append(out, *reg)
	}
	return out, int64(len(out)), nil
}

var _ repository.RegisterRepository = (*fakeRegisterRepo)(nil)

// ── Sale ──────────────────────────────────────────────────────────────────────

type fakeSaleRepo struct {
	sales    map[uuid.UUID]*model.Sale
	counters map[string]int
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{
		sales:    make(map[uuid.UUID]*model.Sale),
		counters: make(map[string]int),
	}
}

func (r *fakeSaleRepo) DB() *gorm.DB { return nil }

func (r *fakeSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	for i := range s.Items {
		if s.Items[i].ID == uuid.Nil {
			s.Items[i].ID = uuid.New()
		}
		s.Items[i].SaleID = s.ID
	}
	r.sales[s.ID] = s
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *fakeSaleRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	s, ok := r.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Status = status
	return nil
}

func (r *fakeSaleRepo) NextSaleNumberTx(_ *gorm.DB, period string) (int, error) {
	r.counters[period]++
	return r.counters[period], nil
}

func (r *fakeSaleRepo) CountByRegister(_ context.Context, registerID uuid.UUID) (int64, error) {
	var count int64
	for _, s := range r.sales {
		if s.CashRegisterID != nil && *s.CashRegisterID == registerID {
			count++
		}
	}
	return count, nil
}

func (r *fakeSaleRepo) List(_ context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if filter.StoreID != "" && s.StoreID.String() != filter.StoreID {
			continue
		}
		if filter.Status != "" && filter.Status != "all" && s.Status != filter.Status {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

var _ repository.SaleRepository = (*fakeSaleRepo)(nil)

// ── User ──────────────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.IsActive {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)
