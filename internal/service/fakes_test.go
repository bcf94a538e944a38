package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type pairKey struct {
	product  uuid.UUID
	location uuid.UUID
}

// fakeLedger is an in-memory stand-in for the stock ledger store. A mutex
// held for the whole atomic unit models the row lock: units on the same
// store serialize, staged writes apply only on commit.
type fakeLedger struct {
	mu           sync.Mutex
	stocks       map[pairKey]*model.Stock
	byID         map[uuid.UUID]pairKey
	transactions []model.Transaction

	// failBeforeCommit injects this many retryable failures before letting
	// a unit through.
	failBeforeCommit int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		stocks: make(map[pairKey]*model.Stock),
		byID:   make(map[uuid.UUID]pairKey),
	}
}

func (f *fakeLedger) seedStock(productID, locationID uuid.UUID, quantity, minLevel int) *model.Stock {
	f.mu.Lock()
	defer f.mu.Unlock()
	stock := &model.Stock{
		ProductID:       productID,
		LocationID:      locationID,
		CurrentQuantity: quantity,
		MinLevel:        minLevel,
	}
	stock.ID = uuid.New()
	key := pairKey{productID, locationID}
	f.stocks[key] = stock
	f.byID[stock.ID] = key
	return stock
}

func (f *fakeLedger) stockFor(productID, locationID uuid.UUID) (model.Stock, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stock, ok := f.stocks[pairKey{productID, locationID}]
	if !ok {
		return model.Stock{}, false
	}
	return *stock, true
}

func (f *fakeLedger) seedTransaction(tx model.Transaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactions = append(f.transactions, tx)
}

func (f *fakeLedger) ledgerLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transactions)
}

func (f *fakeLedger) RunMovement(ctx context.Context, fn func(ltx repository.LedgerTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.failBeforeCommit > 0 {
		f.failBeforeCommit--
		return gorm.ErrDuplicatedKey
	}
	tx := &fakeLedgerTx{
		ledger:          f,
		quantityUpdates: make(map[uuid.UUID]int),
	}
	if err := fn(tx); err != nil {
		// Abort: staged writes are discarded.
		return err
	}
	tx.commit()
	return nil
}

type fakeLedgerTx struct {
	ledger          *fakeLedger
	createdStocks   []*model.Stock
	quantityUpdates map[uuid.UUID]int
	appended        []model.Transaction
}

func (t *fakeLedgerTx) LockStock(productID, locationID uuid.UUID) (*model.Stock, error) {
	if stock, ok := t.ledger.stocks[pairKey{productID, locationID}]; ok {
		copied := *stock
		return &copied, nil
	}
	for _, stock := range t.createdStocks {
		if stock.ProductID == productID && stock.LocationID == locationID {
			copied := *stock
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (t *fakeLedgerTx) CreateStock(stock *model.Stock) error {
	if _, exists := t.ledger.stocks[pairKey{stock.ProductID, stock.LocationID}]; exists {
		return gorm.ErrDuplicatedKey
	}
	stock.ID = uuid.New()
	stock.CreatedAt = time.Now()
	copied := *stock
	t.createdStocks = append(t.createdStocks, &copied)
	return nil
}

func (t *fakeLedgerTx) SaveStockQuantity(stockID uuid.UUID, quantity int, updatedBy string) error {
	t.quantityUpdates[stockID] = quantity
	return nil
}

func (t *fakeLedgerTx) AppendTransaction(tx *model.Transaction) error {
	tx.ID = uuid.New()
	tx.CreatedAt = time.Now()
	t.appended = append(t.appended, *tx)
	return nil
}

func (t *fakeLedgerTx) commit() {
	for _, stock := range t.createdStocks {
		key := pairKey{stock.ProductID, stock.LocationID}
		t.ledger.stocks[key] = stock
		t.ledger.byID[stock.ID] = key
	}
	for id, quantity := range t.quantityUpdates {
		if key, ok := t.ledger.byID[id]; ok {
			t.ledger.stocks[key].CurrentQuantity = quantity
		}
	}
	t.ledger.transactions = append(t.ledger.transactions, t.appended...)
}

// fakeStockRepo reads the committed state of a fakeLedger.
type fakeStockRepo struct {
	ledger *fakeLedger
}

func (r *fakeStockRepo) FindByID(id uuid.UUID) (*model.Stock, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	key, ok := r.ledger.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r.ledger.stocks[key]
	return &copied, nil
}

func (r *fakeStockRepo) FindByPair(productID, locationID uuid.UUID) (*model.Stock, error) {
	stock, ok := r.ledger.stockFor(productID, locationID)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &stock, nil
}

func (r *fakeStockRepo) FindAll() ([]model.Stock, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	stocks := make([]model.Stock, 0, len(r.ledger.stocks))
	for _, stock := range r.ledger.stocks {
		stocks = append(stocks, *stock)
	}
	return stocks, nil
}

func (r *fakeStockRepo) UpdateMinLevel(id uuid.UUID, minLevel int, updatedBy string) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	key, ok := r.ledger.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.ledger.stocks[key].MinLevel = minLevel
	return nil
}

// fakeTransactionRepo reads the committed ledger of a fakeLedger.
type fakeTransactionRepo struct {
	ledger *fakeLedger
}

func (r *fakeTransactionRepo) FindAll(filter repository.TransactionFilter) ([]model.Transaction, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var out []model.Transaction
	for _, tx := range r.ledger.transactions {
		if filter.ProductID != uuid.Nil && tx.ProductID != filter.ProductID {
			continue
		}
		if filter.LocationID != uuid.Nil && tx.LocationID != filter.LocationID {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		out = append(out, tx)
	}
	// Newest first, id as the tiebreaker, mirroring the listing query.
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *fakeTransactionRepo) FindByID(id uuid.UUID) (*model.Transaction, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	for _, tx := range r.ledger.transactions {
		if tx.ID == id {
			copied := tx
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newFakeProductRepo(products ...*model.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: make(map[uuid.UUID]*model.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (r *fakeProductRepo) Create(product *model.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) FindAll() ([]model.Product, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProductRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) FindBySKU(sku string) (*model.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) Update(product *model.Product) error {
	r.products[product.ID] = product
	return nil
}

type fakeSupplierRepo struct {
	suppliers map[uuid.UUID]*model.Supplier
}

func newFakeSupplierRepo(suppliers ...*model.Supplier) *fakeSupplierRepo {
	repo := &fakeSupplierRepo{suppliers: make(map[uuid.UUID]*model.Supplier)}
	for _, s := range suppliers {
		repo.suppliers[s.ID] = s
	}
	return repo
}

func (r *fakeSupplierRepo) Create(supplier *model.Supplier) error {
	if supplier.ID == uuid.Nil {
		supplier.ID = uuid.New()
	}
	r.suppliers[supplier.ID] = supplier
	return nil
}

func (r *fakeSupplierRepo) FindAll() ([]model.Supplier, error) {
	out := make([]model.Supplier, 0, len(r.suppliers))
	for _, s := range r.suppliers {
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeSupplierRepo) FindByID(id uuid.UUID) (*model.Supplier, error) {
	if s, ok := r.suppliers[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSupplierRepo) Update(supplier *model.Supplier) error {
	r.suppliers[supplier.ID] = supplier
	return nil
}

type fakeLocationRepo struct {
	locations map[uuid.UUID]*model.Location
}

func newFakeLocationRepo(locations ...*model.Location) *fakeLocationRepo {
	repo := &fakeLocationRepo{locations: make(map[uuid.UUID]*model.Location)}
	for _, l := range locations {
		repo.locations[l.ID] = l
	}
	return repo
}

func (r *fakeLocationRepo) Create(location *model.Location) error {
	if location.ID == uuid.Nil {
		location.ID = uuid.New()
	}
	r.locations[location.ID] = location
	return nil
}

func (r *fakeLocationRepo) FindAll() ([]model.Location, error) {
	out := make([]model.Location, 0, len(r.locations))
	for _, l := range r.locations {
		out = append(out, *l)
	}
	return out, nil
}

func (r *fakeLocationRepo) FindByID(id uuid.UUID) (*model.Location, error) {
	if l, ok := r.locations[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLocationRepo) FindByName(name string) (*model.Location, error) {
	for _, l := range r.locations {
		if l.Name == name {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeUserRepo struct {
	users   []model.User
	listErr error
}

func (r *fakeUserRepo) FindByEmail(email string) (*model.User, error) {
	for i := range r.users {
		if r.users[i].Email == email {
			return &r.users[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByID(id uuid.UUID) (*model.User, error) {
	for i := range r.users {
		if r.users[i].ID == id {
			return &r.users[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindActiveByRole(roleCode string) ([]model.User, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []model.User
	for _, u := range r.users {
		if u.IsActive && u.Role != nil && u.Role.Code == roleCode {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Create(user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users = append(r.users, *user)
	return nil
}

func (r *fakeUserRepo) Update(user *model.User) error {
	for i := range r.users {
		if r.users[i].ID == user.ID {
			r.users[i] = *user
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindAll() ([]model.User, error) {
	return r.users, nil
}

func (r *fakeUserRepo) UpdateLastSeen(userID uuid.UUID) error {
	return nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []model.Notification
	createErr     error
}

func (r *fakeNotificationRepo) CreateBatch(notifications []model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.notifications = append(r.notifications, notifications...)
	return nil
}

func (r *fakeNotificationRepo) FindByUser(userID uuid.UUID) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(id, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id && r.notifications[i].UserID == userID {
			r.notifications[i].IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type alertCall struct {
	productID  uuid.UUID
	locationID uuid.UUID
	quantity   int
	minLevel   int
}

// recordingAlerts captures low-stock dispatches without side effects.
type recordingAlerts struct {
	mu    sync.Mutex
	calls []alertCall
}

func (a *recordingAlerts) NotifyLowStock(product *model.Product, location *model.Location, quantity, minLevel int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, alertCall{
		productID:  product.ID,
		locationID: location.ID,
		quantity:   quantity,
		minLevel:   minLevel,
	})
}

func (a *recordingAlerts) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}
