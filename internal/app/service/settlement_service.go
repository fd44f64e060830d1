package service

import (
	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/ikkim/sangjo-partner-backend/internal/app/repository"
)

// SettlementService 정산은 조회만 한다 (기존 시트에서 가져온 데이터)
type SettlementService interface {
	List(partnerID, month string) ([]model.Settlement, error)
}

type settlementService struct {
	settlementRepo repository.SettlementRepository
}

func NewSettlementService(settlementRepo repository.SettlementRepository) SettlementService {
	return &settlementService{settlementRepo: settlementRepo}
}

func (s *settlementService) List(partnerID, month string) ([]model.Settlement, error) {
	settlements, err := s.settlementRepo.FindAll(repository.SettlementFilter{
		PartnerID: partnerID,
		Month:     month,
	})
	if err != nil {
		return nil, err
	}
	if settlements == nil {
		settlements = []model.Settlement{}
	}
	return settlements, nil
}
