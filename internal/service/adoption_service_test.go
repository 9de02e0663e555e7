package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"animal-shelter/internal/core/errs"
	"animal-shelter/internal/domain"
	"animal-shelter/internal/repo"
	"animal-shelter/internal/repo/repotest"
)

type fixture struct {
	store     *repo.Store
	animals   *AnimalService
	adopters  *AdopterService
	adoptions *AdoptionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return fixtureOn(repotest.NewStore(t))
}

// newConcurrentFixture 文件库多连接，事务真正并发竞争
func newConcurrentFixture(t *testing.T) *fixture {
	t.Helper()
	return fixtureOn(repo.NewStore(repotest.NewFileDB(t, 4)))
}

func fixtureOn(store *repo.Store) *fixture {
	log := zap.NewNop()
	adoptions := NewAdoptionService(store, log)
	return &fixture{
		store:     store,
		animals:   NewAnimalService(store, adoptions, log),
		adopters:  NewAdopterService(store, log),
		adoptions: adoptions,
	}
}

func (f *fixture) animal(t *testing.T, name, species string) *domain.Animal {
	t.Helper()
	a, err := f.animals.Create(context.Background(), CreateAnimalInput{Name: name, Species: species})
	require.NoError(t, err)
	return a
}

func (f *fixture) status(t *testing.T, id string) domain.AnimalStatus {
	t.Helper()
	a, err := f.store.Animals.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, a)
	return a.Status
}

// assertConsistent adopted 当且仅当存在未退回的领养记录
func (f *fixture) assertConsistent(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	animals, _, err := f.store.Animals.List(ctx, domain.ListParams{Limit: 100})
	require.NoError(t, err)
	for _, a := range animals {
		active, err := f.store.Adoptions.FindActiveByAnimal(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, active != nil, a.Status == domain.AnimalAdopted, "animal %s status %s", a.Name, a.Status)
	}
}

func details(name, phone string) *AdopterDetails {
	return &AdopterDetails{Name: name, Phone: phone}
}

func TestCreateAdoption_RoundTripDefaultsAndSideEffect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rex := f.animal(t, "Rex", "cão")

	ad, err := f.adoptions.Create(ctx, CreateAdoptionInput{
		AnimalID: rex.ID,
		Adopter:  details("Ana", "+55 11 90000-0001"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AdoptionFinalized, ad.Status)
	require.NotNil(t, ad.Animal)
	require.NotNil(t, ad.Adopter)
	assert.Equal(t, "Rex", ad.Animal.Name)
	assert.Equal(t, "Ana", ad.Adopter.Name)
	assert.Equal(t, domain.DefaultAdopterNotes, ad.Adopter.Notes)
	assert.False(t, ad.AdoptionDate.IsZero())

	got, err := f.adoptions.Get(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, ad.ID, got.ID)
	assert.Equal(t, ad.AnimalID, got.AnimalID)
	assert.Equal(t, ad.AdopterID, got.AdopterID)

	assert.Equal(t, domain.AnimalAdopted, f.status(t, rex.ID))
	f.assertConsistent(t)
}

func TestCreateAdoption_ReusesAdopterByPhone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rex, mia := f.animal(t, "Rex", "cão"), f.animal(t, "Mia", "gato")

	a1, err := f.adoptions.Create(ctx, CreateAdoptionInput{AnimalID: rex.ID, Adopter: details("Ana", "555-0101")})
	require.NoError(t, err)
	a2, err := f.adoptions.Create(ctx, CreateAdoptionInput{AnimalID: mia.ID, Adopter: details("Ana Souza", "555-0101")})
	require.NoError(t, err)

	assert.Equal(t, a1.AdopterID, a2.AdopterID)
	_, total, err := f.adopters.List(ctx, domain.ListParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestCreateAdoption_ByAdopterID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rex := f.animal(t, "Rex", "cão")
	ana, err := f.adopters.Create(ctx, CreateAdopterInput{AdopterFields: AdopterFields{Name: "Ana", Phone: "555-0101"}})
	require.NoError(t, err)

	ad, err := f.adoptions.Create(ctx, CreateAdoptionInput{AnimalID: rex.ID, AdopterID: ana.ID, Status: "requested"})
	require.NoError(t, err)
	assert.Equal(t, ana.ID, ad.AdopterID)
	assert.Equal(t, domain.AdoptionRequested, ad.Status)
	assert.Equal(t, domain.AnimalAdopted, f.status(t, rex.ID))

	_, err = f.adoptions.Create(ctx, CreateAdoptionInput{AnimalID: f.animal(t, "Mia", "gato").ID, AdopterID: "missing"})
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestCreateAdoption_AlreadyAdoptedIsConflictWithoutChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rex := f.animal(t, "Rex", "cão")
	first, err := f.adoptions.Create(ctx, CreateAdoptionInput{AnimalID: rex.ID, Adopter: details("Ana", "555-0101")})
	require.NoError(t, err)

	_, err = f.adoptions.Create(ctx, CreateAdoptionInput{AnimalID: rex.ID, Adopter: details("Bia", "555-0202")})
	assert.True(t, errs.Is(err, errs.KindConflict))

	items, total, err := f.adoptions.List(ctx, domain.ListParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, first.ID, items[0].ID)
	bia, err := f.store.Adopters.FindByPhone(ctx, "555-0202")
	require.NoError(t, err)
	assert.Nil(t, bia, "conflicting request must not create an adopter")
	assert.Equal(t, domain.AnimalAdopted, f.status(t, rex.ID))
	f.assertConsistent(t)
}

func TestCreateAdoption_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rex := f.animal(t, "Rex", "cão")

	cases := []struct {
		name  string
		in    CreateAdoptionInput
		field string
	}{
		{"no animal", CreateAdoptionInput{Adopter: details("Ana", "1")}, "animalId"},
		{"no adopter", CreateAdoptionInput{AnimalID: rex.ID}, "adopterId"},
		{"adopter without phone", CreateAdoptionInput{AnimalID: rex.ID, Adopter: details("Ana", " ")}, "adopter.phone"},
		{"adopter without name", CreateAdoptionInput{AnimalID: rex.ID, Adopter: details("", "1")}, "adopter.name"},
		{"bad date", CreateAdoptionInput{AnimalID: rex.ID, Adopter: details("Ana", "1"), AdoptionDate: "yesterday-ish"}, "adoptionDate"},
		{"starts returned", CreateAdoptionInput{AnimalID: rex.ID, Adopter: details("Ana", "1"), Status: "returned"}, "status"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.adoptions.Create(ctx, tc.in)
			var e *errs.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, errs.KindValidation, e.Kind)
			assert.Contains(t, e.Fields, tc.field)
		})
	}

	_, err := f.adoptions.Create(ctx, CreateAdoptionInput{AnimalID: "missing", Adopter: details("Ana", "1")})
	assert.True(t, errs.Is(err, errs.KindNotFound))
	assert.Equal(t, domain.AnimalAvailable, f.status(t, rex.ID))
}

func TestUpdateAdoption_ReturnReleasesAndReactivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rex := f.animal(t, "Rex", "cão")
	ad, err := f.adoptions.Create(ctx, CreateAdoptionInput{AnimalID: rex.ID, Adopter: details("Ana", "555-0101")})
	require.NoError(t, err)

	returned := string(domain.AdoptionReturned)
	notes := "came back"
	up, err := f.adoptions.Update(ctx, ad.ID, UpdateAdoptionInput{Status: &returned, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, domain.AdoptionReturned, up.Status)
	assert.Equal(t, "came back", up.Notes)
	assert.Equal(t, domain.AnimalAvailable, f.status(t, rex.ID))
	f.assertConsistent(t)

	// 另一位领养人领走后，旧记录不能再激活
	other, err := f.adoptions.Create(ctx, CreateAdoptionInput{AnimalID: rex.ID, Adopter: details("Bia", "555-0202")})
	require.NoError(t, err)
	finalized := string(domain.AdoptionFinalized)
	_, err = f.adoptions.Update(ctx, ad.ID, UpdateAdoptionInput{Status: &finalized})
	assert.True(t, errs.Is(err, errs.KindConflict))

	require.NoError(t, f.adoptions.Delete(ctx, other.ID))
	assert.Equal(t, domain.AnimalAvailable, f.status(t, rex.ID))
	up, err = f.adoptions.Update(ctx, ad.ID, UpdateAdoptionInput{Status: &finalized})
	require.NoError(t, err)
	assert.Equal(t, domain.AdoptionFinalized, up.Status)
	assert.Equal(t, domain.AnimalAdopted, f.status(t, rex.ID))
	f.assertConsistent(t)

	bad := "lost"
	_, err = f.adoptions.Update(ctx, ad.ID, UpdateAdoptionInput{Status: &bad})
	assert.True(t, errs.Is(err, errs.KindValidation))
	_, err = f.adoptions.Update(ctx, "missing", UpdateAdoptionInput{Notes: &notes})
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestDeleteAdoption_ReleasesAnimalAndSecondDeleteIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rex := f.animal(t, "Rex", "cão")
	ad, err := f.adoptions.Create(ctx, CreateAdoptionInput{AnimalID: rex.ID, Adopter: details("Ana", "555-0101")})
	require.NoError(t, err)

	require.NoError(t, f.adoptions.Delete(ctx, ad.ID))
	assert.Equal(t, domain.AnimalAvailable, f.status(t, rex.ID))

	err = f.adoptions.Delete(ctx, ad.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))
	_, err = f.adoptions.Get(ctx, ad.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))
	f.assertConsistent(t)
}

func TestDeleteReturnedAdoption_KeepsOtherAdoption(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rex := f.animal(t, "Rex", "cão")
	old, err := f.adoptions.Create(ctx, CreateAdoptionInput{AnimalID: rex.ID, Adopter: details("Ana", "555-0101")})
	require.NoError(t, err)
	returned := string(domain.AdoptionReturned)
	_, err = f.adoptions.Update(ctx, old.ID, UpdateAdoptionInput{Status: &returned})
	require.NoError(t, err)
	_, err = f.adoptions.Create(ctx, CreateAdoptionInput{AnimalID: rex.ID, Adopter: details("Bia", "555-0202")})
	require.NoError(t, err)

	require.NoError(t, f.adoptions.Delete(ctx, old.ID))
	assert.Equal(t, domain.AnimalAdopted, f.status(t, rex.ID))
	f.assertConsistent(t)
}

func TestAnimalMarkedAdopted_CreatesPlaceholderAdoption(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rex := f.animal(t, "Rex", "cão")
	adopted := string(domain.AnimalAdopted)

	_, err := f.animals.Update(ctx, rex.ID, UpdateAnimalInput{Status: &adopted})
	require.NoError(t, err)
	active, err := f.store.Adoptions.FindActiveByAnimal(ctx, rex.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, domain.AdoptionFinalized, active.Status)

	ph, err := f.store.Adopters.FindPlaceholder(ctx)
	require.NoError(t, err)
	require.NotNil(t, ph)
	assert.Equal(t, domain.SentinelAdopterName, ph.Name)
	assert.Equal(t, ph.ID, active.AdopterID)

	// 占位领养人只建一次
	mia, err := f.animals.Create(ctx, CreateAnimalInput{Name: "Mia", Species: "gato", Status: adopted})
	require.NoError(t, err)
	active, err = f.store.Adoptions.FindActiveByAnimal(ctx, mia.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, ph.ID, active.AdopterID)
	n, err := f.store.Adoptions.CountByAdopter(ctx, ph.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	// 再次设为 adopted 不重复建记录
	_, err = f.animals.Update(ctx, rex.ID, UpdateAnimalInput{Status: &adopted})
	require.NoError(t, err)
	n, err = f.store.Adoptions.CountByAdopter(ctx, ph.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	f.assertConsistent(t)
}

func TestAnimalLeavingAdoptedWithActiveAdoptionIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rex := f.animal(t, "Rex", "cão")
	_, err := f.adoptions.Create(ctx, CreateAdoptionInput{AnimalID: rex.ID, Adopter: details("Ana", "555-0101")})
	require.NoError(t, err)

	available := string(domain.AnimalAvailable)
	_, err = f.animals.Update(ctx, rex.ID, UpdateAnimalInput{Status: &available})
	assert.True(t, errs.Is(err, errs.KindConflict))
	assert.Equal(t, domain.AnimalAdopted, f.status(t, rex.ID))

	name := "Rex II"
	up, err := f.animals.Update(ctx, rex.ID, UpdateAnimalInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Rex II", up.Name)
	f.assertConsistent(t)
}

func TestDeleteAnimal_CascadesAdoptionsAndVetRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rex := f.animal(t, "Rex", "cão")
	ad, err := f.adoptions.Create(ctx, CreateAdoptionInput{AnimalID: rex.ID, Adopter: details("Ana", "555-0101")})
	require.NoError(t, err)
	vets := NewVetRecordService(f.store, zap.NewNop())
	rec, err := vets.Create(ctx, CreateVetRecordInput{AnimalID: rex.ID, Doctor: "Dr. Lima", Cost: 120})
	require.NoError(t, err)

	require.NoError(t, f.animals.Delete(ctx, rex.ID))
	_, err = f.adoptions.Get(ctx, ad.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))
	_, err = vets.Get(ctx, rec.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))

	assert.True(t, errs.Is(f.animals.Delete(ctx, rex.ID), errs.KindNotFound))
	// 领养人保留，且此时可以删除
	require.NoError(t, f.adopters.Delete(ctx, ad.AdopterID))
}

func TestCreateAdoption_ConcurrentSameAnimal(t *testing.T) {
	f := newConcurrentFixture(t)
	ctx := context.Background()
	rex := f.animal(t, "Rex", "cão")

	const n = 8
	results := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, results[i] = f.adoptions.Create(ctx, CreateAdoptionInput{
				AnimalID: rex.ID,
				Adopter:  details(fmt.Sprintf("Adopter %d", i), fmt.Sprintf("+55 11 90000-%04d", i)),
			})
		}(i)
	}
	close(start)
	wg.Wait()

	ok, conflicts := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errs.KindOf(err) == errs.KindConflict:
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
	assert.Equal(t, domain.AnimalAdopted, f.status(t, rex.ID))

	_, total, err := f.adoptions.List(ctx, domain.ListParams{Limit: 100})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	// 失败方的领养人随事务回滚
	_, adopters, err := f.adopters.List(ctx, domain.ListParams{Limit: 100})
	require.NoError(t, err)
	assert.EqualValues(t, 1, adopters)
	f.assertConsistent(t)
}

// 只改名字的更新与领养并发时，不能把 status 写回 available
func TestUpdateAnimal_ConcurrentWithAdoptionKeepsStatus(t *testing.T) {
	f := newConcurrentFixture(t)
	ctx := context.Background()

	for round := 0; round < 5; round++ {
		a := f.animal(t, fmt.Sprintf("Pet %d", round), "gato")
		name := fmt.Sprintf("Pet %d renamed", round)

		var wg sync.WaitGroup
		var updErr, adoptErr error
		start := make(chan struct{})
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			_, updErr = f.animals.Update(ctx, a.ID, UpdateAnimalInput{Name: &name})
		}()
		go func() {
			defer wg.Done()
			<-start
			_, adoptErr = f.adoptions.Create(ctx, CreateAdoptionInput{
				AnimalID: a.ID,
				Adopter:  details("Ana", "+55 11 91111-0000"),
			})
		}()
		close(start)
		wg.Wait()

		require.NoError(t, updErr)
		require.NoError(t, adoptErr)
		got, err := f.animals.Get(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, name, got.Name)
		assert.Equal(t, domain.AnimalAdopted, got.Status)

		// 第二次领养必须冲突
		_, err = f.adoptions.Create(ctx, CreateAdoptionInput{
			AnimalID: a.ID,
			Adopter:  details("Bia", "+55 11 92222-0000"),
		})
		assert.Equal(t, errs.KindConflict, errs.KindOf(err))
	}
	f.assertConsistent(t)
}
