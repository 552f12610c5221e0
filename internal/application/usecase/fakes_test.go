package usecase_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/BancoSangre-api/internal/domain"
	"github.com/jhoicas/BancoSangre-api/internal/domain/blood"
	"github.com/jhoicas/BancoSangre-api/internal/domain/entity"
	"github.com/jhoicas/BancoSangre-api/internal/domain/repository"
	"github.com/jhoicas/BancoSangre-api/pkg/textnorm"
)

type memPersons struct {
	mu      sync.Mutex
	persons map[string]entity.Person
	// donors ids con donaciones; Delete falla como lo haría la FK.
	donors map[string]bool
}

func newMemPersons() *memPersons {
	return &memPersons{persons: make(map[string]entity.Person), donors: make(map[string]bool)}
}

var _ repository.PersonRepository = (*memPersons)(nil)

func (r *memPersons) Create(_ context.Context, p *entity.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkDocuments(p); err != nil {
		return err
	}
	r.persons[p.ID] = *p
	return nil
}

func (r *memPersons) checkDocuments(p *entity.Person) error {
	for _, other := range r.persons {
		if other.ID == p.ID {
			continue
		}
		for _, d := range p.Documents {
			if other.DocumentNumber(d.Type) == d.Number {
				return domain.Duplicate("person", "documents")
			}
		}
	}
	return nil
}

func (r *memPersons) GetByID(_ context.Context, id string) (*entity.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.persons[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *memPersons) GetByDocument(_ context.Context, number string) (*entity.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.persons {
		for _, d := range p.Documents {
			if d.Number == number {
				p := p
				return &p, nil
			}
		}
	}
	return nil, nil
}

func (r *memPersons) Update(_ context.Context, p *entity.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.persons[p.ID]; !ok {
		return domain.NotFound("person", p.ID)
	}
	if err := r.checkDocuments(p); err != nil {
		return err
	}
	r.persons[p.ID] = *p
	return nil
}

func (r *memPersons) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.donors[id] {
		return domain.InvalidState("person", id, "tiene donaciones registradas")
	}
	delete(r.persons, id)
	return nil
}

func (r *memPersons) all(match func(entity.Person) bool) []*entity.Person {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Person, 0)
	for _, p := range r.persons {
		if match(p) {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *memPersons) List(_ context.Context, limit, offset int) ([]*entity.Person, error) {
	list := r.all(func(entity.Person) bool { return true })
	if offset >= len(list) {
		return []*entity.Person{}, nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end], nil
}

func (r *memPersons) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.persons), nil
}

func (r *memPersons) SearchByName(_ context.Context, key string) ([]*entity.Person, error) {
	return r.all(func(p entity.Person) bool { return strings.Contains(textnorm.Fold(p.Name), key) }), nil
}

func (r *memPersons) ListByBloodTypes(_ context.Context, types []blood.Type) ([]*entity.Person, error) {
	return r.all(func(p entity.Person) bool {
		for _, t := range types {
			if p.BloodType == t {
				return true
			}
		}
		return false
	}), nil
}

func (r *memPersons) ListByCity(_ context.Context, city string) ([]*entity.Person, error) {
	return r.all(func(p entity.Person) bool { return textnorm.Fold(p.Address.City) == city }), nil
}

func (r *memPersons) ListByState(_ context.Context, state string) ([]*entity.Person, error) {
	return r.all(func(p entity.Person) bool { return textnorm.FoldState(p.Address.State) == state }), nil
}

// memPersonTx ejecuta fn sobre el mismo repo; suficiente para los casos de uso (una sola escritura por tx).
type memPersonTx struct {
	repo  *memPersons
	calls int
}

func (t *memPersonTx) RunPersons(_ context.Context, fn func(repository.PersonRepository) error) error {
	t.calls++
	return fn(t.repo)
}

type fakeCEP struct {
	addrs map[string]entity.Address
	calls int
}

func (f *fakeCEP) Lookup(_ context.Context, cep string) (*entity.Address, bool) {
	f.calls++
	a, ok := f.addrs[cep]
	if !ok {
		return nil, false
	}
	return &a, true
}

type memDonations struct {
	mu        sync.Mutex
	donations map[string]entity.Donation
}

func newMemDonations() *memDonations {
	return &memDonations{donations: make(map[string]entity.Donation)}
}

var _ repository.DonationRepository = (*memDonations)(nil)

func (r *memDonations) Create(_ context.Context, d *entity.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.donations[d.ID] = *d
	return nil
}

func (r *memDonations) GetByID(_ context.Context, id string) (*entity.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.donations[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *memDonations) GetForUpdate(ctx context.Context, id string) (*entity.Donation, error) {
	return r.GetByID(ctx, id)
}

func (r *memDonations) Update(_ context.Context, d *entity.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.donations[d.ID]
	if !ok {
		return domain.NotFound("donation", d.ID)
	}
	if current.Status != entity.DonationAvailable {
		return domain.InvalidState("donation", d.ID, "la donación está "+current.Status)
	}
	r.donations[d.ID] = *d
	return nil
}

func (r *memDonations) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.donations[id]
	d.Status = status
	r.donations[id] = d
	return nil
}

func (r *memDonations) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.donations, id)
	return nil
}

func (r *memDonations) filter(match func(entity.Donation) bool) []*entity.Donation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Donation, 0)
	for _, d := range r.donations {
		if match(d) {
			d := d
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DonatedAt.After(out[j].DonatedAt) })
	return out
}

func (r *memDonations) List(_ context.Context, limit, offset int) ([]*entity.Donation, error) {
	list := r.filter(func(entity.Donation) bool { return true })
	if offset >= len(list) {
		return []*entity.Donation{}, nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end], nil
}

func (r *memDonations) ListByDonor(_ context.Context, donorID string) ([]*entity.Donation, error) {
	return r.filter(func(d entity.Donation) bool { return d.DonorID == donorID }), nil
}

func (r *memDonations) ListByStatus(_ context.Context, status string) ([]*entity.Donation, error) {
	return r.filter(func(d entity.Donation) bool { return d.Status == status }), nil
}

func (r *memDonations) ListExpiredForUpdate(_ context.Context, today time.Time) ([]*entity.Donation, error) {
	return r.filter(func(d entity.Donation) bool {
		return d.Status == entity.DonationAvailable && blood.IsExpired(d.ExpiresOn, today)
	}), nil
}

func (r *memDonations) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.donations), nil
}

func (r *memDonations) CountByStatus(_ context.Context, status string) (int, error) {
	return len(r.filter(func(d entity.Donation) bool { return d.Status == status })), nil
}

func (r *memDonations) CountAvailableByType(_ context.Context) (map[blood.Type]int, error) {
	out := make(map[blood.Type]int)
	for _, d := range r.filter(func(d entity.Donation) bool { return d.IsAvailable() }) {
		out[d.BloodType]++
	}
	return out, nil
}
