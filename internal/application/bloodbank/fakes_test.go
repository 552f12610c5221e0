package bloodbank_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/BancoSangre-api/internal/application/dto"
	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
	"github.com/jhoicas/BancoSangre-api/internal/domain/entity"
	"github.com/jhoicas/BancoSangre-api/internal/domain/repository"
)

// memStore estado en memoria compartido por los repos fake. RunBloodBank toma una copia
// antes de fn y la restaura si fn falla, igual que un Rollback.
type memStore struct {
	mu        sync.Mutex
	donations map[string]*entity.Donation
	stock     map[blood.Type]*entity.BloodStock

	failUpdateStatus error
	failIncrement    error
}

func newMemStore() *memStore {
	return &memStore{
		donations: make(map[string]*entity.Donation),
		stock:     make(map[blood.Type]*entity.BloodStock),
	}
}

func (s *memStore) snapshot() (map[string]entity.Donation, map[blood.Type]entity.BloodStock) {
	d := make(map[string]entity.Donation, len(s.donations))
	for k, v := range s.donations {
		d[k] = *v
	}
	st := make(map[blood.Type]entity.BloodStock, len(s.stock))
	for k, v := range s.stock {
		st[k] = *v
	}
	return d, st
}

func (s *memStore) restore(d map[string]entity.Donation, st map[blood.Type]entity.BloodStock) {
	s.donations = make(map[string]*entity.Donation, len(d))
	for k, v := range d {
		v := v
		s.donations[k] = &v
	}
	s.stock = make(map[blood.Type]*entity.BloodStock, len(st))
	for k, v := range st {
		v := v
		s.stock[k] = &v
	}
}

func (s *memStore) addDonation(id string, t blood.Type, volume int64, status string, expiresOn time.Time) {
	s.donations[id] = &entity.Donation{
		ID:        id,
		DonorID:   "donor-" + id,
		BloodType: t,
		VolumeML:  decimalFromInt(volume),
		DonatedAt: expiresOn.AddDate(0, 0, -42),
		ExpiresOn: expiresOn,
		Status:    status,
	}
}

func (s *memStore) donation(id string) entity.Donation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.donations[id]
}

func (s *memStore) quantity(t blood.Type) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.stock[t]; ok {
		return st.Quantity
	}
	return 0
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

type memTxRunner struct{ s *memStore }

func (r memTxRunner) RunBloodBank(ctx context.Context, fn func(
	donations repository.DonationRepository,
	stock repository.BloodStockRepository,
) error) error {
	// Un solo "tx" a la vez: equivale al bloqueo de filas de Postgres.
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, st := r.s.snapshot()
	if err := fn(&memDonations{s: r.s, locked: true}, &memStock{s: r.s, locked: true}); err != nil {
		r.s.restore(d, st)
		return err
	}
	return nil
}

// ── DonationRepository ────────────────────────────────────────────────────────

type memDonations struct {
	s      *memStore
	locked bool // dentro de RunBloodBank el mutex ya está tomado
}

var _ repository.DonationRepository = (*memDonations)(nil)

func (r *memDonations) lock() func() {
	if r.locked {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *memDonations) Create(_ context.Context, d *entity.Donation) error {
	defer r.lock()()
	cp := *d
	r.s.donations[d.ID] = &cp
	return nil
}

func (r *memDonations) GetByID(_ context.Context, id string) (*entity.Donation, error) {
	defer r.lock()()
	d, ok := r.s.donations[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *memDonations) GetForUpdate(ctx context.Context, id string) (*entity.Donation, error) {
	return r.GetByID(ctx, id)
}

func (r *memDonations) Update(_ context.Context, d *entity.Donation) error {
	defer r.lock()()
	current, ok := r.s.donations[d.ID]
	if !ok || current.Status != entity.DonationAvailable {
		return errors.New("no disponible")
	}
	cp := *d
	r.s.donations[d.ID] = &cp
	return nil
}

func (r *memDonations) UpdateStatus(_ context.Context, id, status string) error {
	defer r.lock()()
	if r.s.failUpdateStatus != nil {
		return r.s.failUpdateStatus
	}
	d, ok := r.s.donations[id]
	if !ok {
		return errors.New("no existe")
	}
	d.Status = status
	return nil
}

func (r *memDonations) Delete(_ context.Context, id string) error {
	defer r.lock()()
	delete(r.s.donations, id)
	return nil
}

func (r *memDonations) filter(keep func(*entity.Donation) bool) []*entity.Donation {
	var out []*entity.Donation
	for _, d := range r.s.donations {
		if keep(d) {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memDonations) List(_ context.Context, limit, offset int) ([]*entity.Donation, error) {
	defer r.lock()()
	all := r.filter(func(*entity.Donation) bool { return true })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memDonations) ListByDonor(_ context.Context, donorID string) ([]*entity.Donation, error) {
	defer r.lock()()
	return r.filter(func(d *entity.Donation) bool { return d.DonorID == donorID }), nil
}

func (r *memDonations) ListByStatus(_ context.Context, status string) ([]*entity.Donation, error) {
	defer r.lock()()
	return r.filter(func(d *entity.Donation) bool { return d.Status == status }), nil
}

func (r *memDonations) ListExpiredForUpdate(_ context.Context, today time.Time) ([]*entity.Donation, error) {
	defer r.lock()()
	return r.filter(func(d *entity.Donation) bool {
		return d.Status == entity.DonationAvailable && blood.IsExpired(d.ExpiresOn, today)
	}), nil
}

func (r *memDonations) Count(_ context.Context) (int, error) {
	defer r.lock()()
	return len(r.s.donations), nil
}

func (r *memDonations) CountByStatus(_ context.Context, status string) (int, error) {
	defer r.lock()()
	return len(r.filter(func(d *entity.Donation) bool { return d.Status == status })), nil
}

func (r *memDonations) CountAvailableByType(_ context.Context) (map[blood.Type]int, error) {
	defer r.lock()()
	out := make(map[blood.Type]int)
	for _, d := range r.s.donations {
		if d.Status == entity.DonationAvailable {
			out[d.BloodType]++
		}
	}
	return out, nil
}

// ── BloodStockRepository ──────────────────────────────────────────────────────

type memStock struct {
	s      *memStore
	locked bool
}

var _ repository.BloodStockRepository = (*memStock)(nil)

func (r *memStock) lock() func() {
	if r.locked {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *memStock) Get(_ context.Context, t blood.Type) (*entity.BloodStock, error) {
	defer r.lock()()
	st, ok := r.s.stock[t]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (r *memStock) List(_ context.Context) ([]*entity.BloodStock, error) {
	defer r.lock()()
	var out []*entity.BloodStock
	for _, st := range r.s.stock {
		cp := *st
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memStock) Increment(_ context.Context, t blood.Type, bags, minimum int) (int, error) {
	defer r.lock()()
	if r.s.failIncrement != nil {
		return 0, r.s.failIncrement
	}
	st, ok := r.s.stock[t]
	if !ok {
		st = &entity.BloodStock{BloodType: t, Minimum: minimum}
		r.s.stock[t] = st
	}
	st.Quantity += bags
	return st.Quantity, nil
}

func (r *memStock) Decrement(_ context.Context, t blood.Type, bags int) (int, bool, error) {
	defer r.lock()()
	st, ok := r.s.stock[t]
	if !ok || st.Quantity < bags {
		return 0, false, nil
	}
	st.Quantity -= bags
	return st.Quantity, true, nil
}

func (r *memStock) SetMinimum(_ context.Context, t blood.Type, minimum int) error {
	defer r.lock()()
	st, ok := r.s.stock[t]
	if !ok {
		st = &entity.BloodStock{BloodType: t}
		r.s.stock[t] = st
	}
	st.Minimum = minimum
	return nil
}

func (r *memStock) SumQuantity(_ context.Context) (int, error) {
	defer r.lock()()
	total := 0
	for _, st := range r.s.stock {
		total += st.Quantity
	}
	return total, nil
}

// ── Otros puertos ─────────────────────────────────────────────────────────────

type fakeDonors struct {
	persons []dto.PersonResponse
	asked   []blood.Type
}

func (f *fakeDonors) FindByBloodTypes(_ context.Context, types []blood.Type) ([]dto.PersonResponse, error) {
	f.asked = types
	var out []dto.PersonResponse
	for _, p := range f.persons {
		for _, t := range types {
			if p.BloodType == t {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

type fakeLocker struct {
	held     map[string]bool
	unlocked []string
	err      error
}

func (f *fakeLocker) TryLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.held == nil {
		f.held = make(map[string]bool)
	}
	if f.held[key] {
		return false, nil
	}
	f.held[key] = true
	return true, nil
}

func (f *fakeLocker) Unlock(_ context.Context, key string) error {
	f.unlocked = append(f.unlocked, key)
	delete(f.held, key)
	return nil
}
