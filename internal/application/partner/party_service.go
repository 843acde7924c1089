package partner

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vastra-erp/backend/internal/domain/partner"
	"github.com/vastra-erp/backend/internal/domain/shared"
)

// PartyService manages the trading partner register. Parties are referenced
// by id from invoices, challans, payments, and transfers, so they are
// deactivated rather than deleted once documents exist.
type PartyService struct {
	partyRepo partner.PartyRepository
	logger    *zap.Logger
}

// NewPartyService creates a new PartyService
func NewPartyService(partyRepo partner.PartyRepository, logger *zap.Logger) *PartyService {
	return &PartyService{
		partyRepo: partyRepo,
		logger:    logger,
	}
}

// Create registers a trading partner. Names are unique within a scope.
func (s *PartyService) Create(ctx context.Context, scope shared.Scope, req CreatePartyRequest) (*PartyResponse, error) {
	existing, err := s.partyRepo.FindByName(ctx, scope, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A party with this name already exists")
	}

	p, err := partner.NewParty(scope.CompanyID, scope.FinancialYear, req.Name, partner.PartyKind(req.Kind))
	if err != nil {
		return nil, err
	}
	p.UpdateContact(req.Address, req.City, req.Phone, req.Email)
	if req.GSTIN != "" {
		p.SetGSTIN(req.GSTIN)
	}
	if !req.OpeningBalance.IsZero() {
		p.SetOpeningBalance(req.OpeningBalance)
	}

	if err := s.partyRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("party registered",
		zap.String("name", p.Name),
		zap.String("kind", string(p.Kind)))
	return toPartyResponse(p), nil
}

// Get returns one party by id
func (s *PartyService) Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (*PartyResponse, error) {
	p, err := s.partyRepo.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Party not found")
	}
	return toPartyResponse(p), nil
}

// List returns a page of parties
func (s *PartyService) List(ctx context.Context, scope shared.Scope, filter PartyListFilter) (*shared.Paginated[PartyResponse], error) {
	domainFilter := partner.PartyFilter{Filter: shared.DefaultFilter()}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.City = filter.City
	domainFilter.IsActive = filter.Active
	if filter.Kind != "" {
		kind := partner.PartyKind(filter.Kind)
		if !kind.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid party kind filter")
		}
		domainFilter.Kind = &kind
	}

	parties, err := s.partyRepo.FindAll(ctx, scope, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.partyRepo.Count(ctx, scope, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]PartyResponse, len(parties))
	for i := range parties {
		items[i] = *toPartyResponse(&parties[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Update changes a party's contact details
func (s *PartyService) Update(ctx context.Context, scope shared.Scope, id uuid.UUID, req UpdatePartyRequest) (*PartyResponse, error) {
	p, err := s.partyRepo.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Party not found")
	}

	address, city, phone, email := p.Address, p.City, p.Phone, p.Email
	if req.Address != nil {
		address = *req.Address
	}
	if req.City != nil {
		city = *req.City
	}
	if req.Phone != nil {
		phone = *req.Phone
	}
	if req.Email != nil {
		email = *req.Email
	}
	p.UpdateContact(address, city, phone, email)
	if req.GSTIN != nil {
		p.SetGSTIN(*req.GSTIN)
	}

	if err := s.partyRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	return toPartyResponse(p), nil
}

// Deactivate retires a party from new documents
func (s *PartyService) Deactivate(ctx context.Context, scope shared.Scope, id uuid.UUID) (*PartyResponse, error) {
	return s.setActive(ctx, scope, id, false)
}

// Activate re-enables a party for new documents
func (s *PartyService) Activate(ctx context.Context, scope shared.Scope, id uuid.UUID) (*PartyResponse, error) {
	return s.setActive(ctx, scope, id, true)
}

func (s *PartyService) setActive(ctx context.Context, scope shared.Scope, id uuid.UUID, active bool) (*PartyResponse, error) {
	p, err := s.partyRepo.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Party not found")
	}

	if active {
		p.Activate()
	} else {
		p.Deactivate()
	}
	if err := s.partyRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	return toPartyResponse(p), nil
}
