package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorillaworkout/dupoin-sheet-converter/internal/metrics"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/model"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/repository"
	"github.com/gorillaworkout/dupoin-sheet-converter/internal/xero"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ReportFetcher Xero 报表拉取接口(xero.Client 实现)
type ReportFetcher interface {
	BalanceSheet(ctx context.Context, date string) (json.RawMessage, error)
	ProfitAndLoss(ctx context.Context, fromDate, toDate string) (json.RawMessage, error)
	IsAuthenticated() bool
	SetTokens(t xero.Tokens)
	StoredTokens() *xero.Tokens
}

// ReportSync 单份报表的同步结果
type ReportSync struct {
	ReportID uint `json:"reportId"`
	Synced   int  `json:"synced"`
}

// SyncResult 一次完整同步的结果
type SyncResult struct {
	BalanceSheet ReportSync `json:"balanceSheet"`
	ProfitLoss   ReportSync `json:"profitLoss"`
}

// SyncService Xero 报表同步服务接口
type SyncService interface {
	// EnsureTokens 内存令牌为空时从数据库恢复
	EnsureTokens(ctx context.Context) error
	// PersistTokens 将当前令牌写回数据库(刷新后令牌会轮换)
	PersistTokens() error
	// Sync 并发同步资产负债表与损益表并落库
	Sync(ctx context.Context, fromDate, toDate string) (*SyncResult, error)
}

// syncService Xero 报表同步服务实现
type syncService struct {
	fetcher   ReportFetcher
	tokenRepo repository.TokenRepository
	repo      repository.ReportRepository
	log       *logrus.Logger
}

// NewSyncService 创建报表同步服务
func NewSyncService(fetcher ReportFetcher, tokenRepo repository.TokenRepository, repo repository.ReportRepository, log *logrus.Logger) SyncService {
	return &syncService{
		fetcher:   fetcher,
		tokenRepo: tokenRepo,
		repo:      repo,
		log:       log,
	}
}

// EnsureTokens 内存令牌为空时从数据库恢复
func (s *syncService) EnsureTokens(ctx context.Context) error {
	if s.fetcher.IsAuthenticated() {
		return nil
	}

	stored, err := s.tokenRepo.Load()
	if err != nil {
		return fmt.Errorf("failed to load Xero tokens: %w", err)
	}
	if stored == nil {
		return xero.ErrNotAuthenticated
	}

	s.fetcher.SetTokens(xero.Tokens{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		ExpiresAt:    stored.ExpiresAt,
		TenantID:     stored.TenantID,
	})
	s.log.Info("Xero tokens restored from database")
	return nil
}

// PersistTokens 将当前令牌写回数据库
func (s *syncService) PersistTokens() error {
	tokens := s.fetcher.StoredTokens()
	if tokens == nil {
		return nil
	}

	return s.tokenRepo.Save(&model.XeroTokenModel{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
		TenantID:     tokens.TenantID,
	})
}

// Sync 并发同步资产负债表与损益表并落库
// 两份报表都成功后把可能已轮换的令牌写回数据库
func (s *syncService) Sync(ctx context.Context, fromDate, toDate string) (*SyncResult, error) {
	if err := s.EnsureTokens(ctx); err != nil {
		return nil, err
	}

	result := &SyncResult{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sync, err := s.syncBalanceSheet(gctx, toDate)
		if err != nil {
			return err
		}
		result.BalanceSheet = *sync
		return nil
	})
	g.Go(func() error {
		sync, err := s.syncProfitLoss(gctx, fromDate, toDate)
		if err != nil {
			return err
		}
		result.ProfitLoss = *sync
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.PersistTokens(); err != nil {
		s.log.WithError(err).Warn("Failed to persist Xero tokens after sync")
	}

	s.log.WithFields(logrus.Fields{
		"balance_sheet_rows": result.BalanceSheet.Synced,
		"profit_loss_rows":   result.ProfitLoss.Synced,
	}).Info("Xero report sync completed")

	return result, nil
}

// syncBalanceSheet 拉取并落库资产负债表
func (s *syncService) syncBalanceSheet(ctx context.Context, date string) (*ReportSync, error) {
	raw, err := s.fetcher.BalanceSheet(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balance sheet: %w", err)
	}

	report, err := firstReport(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid balance sheet response: %w", err)
	}
	if report == nil {
		// 空报表按 0 行处理,不落库
		return &ReportSync{}, nil
	}

	flat := xero.FlattenReport(report)
	rows := make([]model.BalanceSheetRowModel, 0, len(flat))
	for _, f := range flat {
		rows = append(rows, model.BalanceSheetRowModel{
			Section:     f.Section,
			AccountName: f.AccountName,
			Value:       f.Value,
			Period:      f.Period,
		})
	}

	parent := &model.BalanceSheetReportModel{
		ReportDate: report.ReportDate,
		RawJSON:    raw,
	}
	if err := s.repo.SaveBalanceSheet(parent, rows); err != nil {
		return nil, fmt.Errorf("failed to save balance sheet: %w", err)
	}

	metrics.RecordSyncRows("balance_sheet", len(rows))
	return &ReportSync{ReportID: parent.ID, Synced: len(rows)}, nil
}

// syncProfitLoss 拉取并落库损益表
func (s *syncService) syncProfitLoss(ctx context.Context, fromDate, toDate string) (*ReportSync, error) {
	raw, err := s.fetcher.ProfitAndLoss(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profit and loss: %w", err)
	}

	report, err := firstReport(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid profit and loss response: %w", err)
	}
	if report == nil {
		// 空报表按 0 行处理,不落库
		return &ReportSync{}, nil
	}

	flat := xero.FlattenReport(report)
	rows := make([]model.ProfitLossRowModel, 0, len(flat))
	for _, f := range flat {
		rows = append(rows, model.ProfitLossRowModel{
			Section:     f.Section,
			AccountName: f.AccountName,
			Value:       f.Value,
			Period:      f.Period,
		})
	}

	parent := &model.ProfitLossReportModel{
		FromDate: fromDate,
		ToDate:   toDate,
		RawJSON:  raw,
	}
	if err := s.repo.SaveProfitLoss(parent, rows); err != nil {
		return nil, fmt.Errorf("failed to save profit and loss: %w", err)
	}

	metrics.RecordSyncRows("profit_loss", len(rows))
	return &ReportSync{ReportID: parent.ID, Synced: len(rows)}, nil
}

// firstReport 解析报表响应并取第一份报表,Reports 为空时返回 nil
func firstReport(raw json.RawMessage) (*xero.Report, error) {
	var envelope xero.ReportEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Reports) == 0 {
		return nil, nil
	}
	return &envelope.Reports[0], nil
}
