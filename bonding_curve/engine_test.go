package bonding_curve_test

import (
	"context"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	bc "github.com/launchlab/bondingcurve-go/bonding_curve"
	"github.com/launchlab/bondingcurve-go/store"
)

type fixedClock struct{ now int64 }

func (c *fixedClock) Now() int64 { return c.now }

// captureSink remembers every record it receives.
type captureSink struct {
	mu          sync.Mutex
	trades      []bc.TradeRecord
	launches    []bc.LaunchRecord
	graduations []bc.GraduationRecord
}

func (s *captureSink) RecordTrade(_ context.Context, rec bc.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = append(s.trades, rec)
	return nil
}

func (s *captureSink) RecordLaunch(_ context.Context, rec bc.LaunchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.launches = append(s.launches, rec)
	return nil
}

func (s *captureSink) RecordGraduation(_ context.Context, rec bc.GraduationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graduations = append(s.graduations, rec)
	return nil
}

type harness struct {
	client *bc.Client
	ledger *store.Memory
	sink   *captureSink
	clock  *fixedClock

	authority    solana.PublicKey
	feeRecipient solana.PublicKey
	creator      solana.PublicKey
	trader       solana.PublicKey
	mint         solana.PublicKey
}

func newHarness(t *testing.T, params bc.InitializeParams) *harness {
	t.Helper()

	h := &harness{
		ledger:       store.NewMemory(),
		sink:         &captureSink{},
		clock:        &fixedClock{now: 1_700_000_000},
		authority:    solana.NewWallet().PublicKey(),
		feeRecipient: solana.NewWallet().PublicKey(),
		creator:      solana.NewWallet().PublicKey(),
		trader:       solana.NewWallet().PublicKey(),
		mint:         solana.NewWallet().PublicKey(),
	}
	h.client = bc.NewClient(h.ledger, h.sink, h.clock, nil)

	params.Authority = h.authority
	params.FeeRecipient = h.feeRecipient
	require.NoError(t, h.client.Admin.Initialize(context.Background(), params))
	return h
}

func (h *harness) launch(t *testing.T) {
	t.Helper()
	_, err := h.client.Launch.CreateLaunch(context.Background(), bc.LaunchParams{
		Creator:       h.creator,
		Mint:          h.mint,
		Name:          "Test Token",
		Symbol:        "TEST",
		URI:           "https://example.com/test.json",
		InitialSupply: bc.DefaultInitialTokenSupply,
	})
	require.NoError(t, err)
}

func (h *harness) curve(t *testing.T) bc.CurveState {
	t.Helper()
	curve, err := h.ledger.Curve(context.Background(), h.mint)
	require.NoError(t, err)
	return curve
}

func defaultParams() bc.InitializeParams {
	return bc.InitializeParams{FeeBasisPoints: 100}
}

func TestCreateLaunch(t *testing.T) {
	h := newHarness(t, defaultParams())
	h.launch(t)

	curve := h.curve(t)
	require.Equal(t, uint64(bc.DefaultVirtualSolReserves), curve.VirtualSolReserves)
	require.Equal(t, uint64(bc.DefaultVirtualTokenReserves), curve.VirtualTokenReserves)
	require.Equal(t, uint64(bc.DefaultInitialTokenSupply), curve.RealTokenReserves)
	require.Equal(t, uint64(0), curve.RealSolReserves)
	require.Equal(t, uint64(bc.DefaultInitialTokenSupply), curve.TotalSupply)
	require.Equal(t, bc.CompletionStateActive, curve.CompletionState)

	// Full supply sits in curve custody.
	require.Equal(t, uint64(bc.DefaultInitialTokenSupply), h.ledger.TokenBalance(h.mint, h.mint))

	cfg, err := h.ledger.Config(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(1), cfg.TotalLaunches)
	require.Len(t, h.sink.launches, 1)
}

func TestCreateLaunchValidation(t *testing.T) {
	h := newHarness(t, defaultParams())

	tests := []struct {
		name    string
		mutate  func(*bc.LaunchParams)
		wantErr error
	}{
		{name: "empty name", mutate: func(p *bc.LaunchParams) { p.Name = "" }, wantErr: bc.ErrInvalidMetadata},
		{name: "long name", mutate: func(p *bc.LaunchParams) { p.Name = string(make([]byte, bc.MaxNameLen+1)) }, wantErr: bc.ErrInvalidMetadata},
		{name: "empty symbol", mutate: func(p *bc.LaunchParams) { p.Symbol = "" }, wantErr: bc.ErrInvalidMetadata},
		{name: "long uri", mutate: func(p *bc.LaunchParams) { p.URI = string(make([]byte, bc.MaxURILen+1)) }, wantErr: bc.ErrInvalidMetadata},
		{name: "zero supply", mutate: func(p *bc.LaunchParams) { p.InitialSupply = 0 }, wantErr: bc.ErrInvalidAmount},
		{name: "bad metadata json", mutate: func(p *bc.LaunchParams) { p.MetadataJSON = "{not json" }, wantErr: bc.ErrInvalidMetadata},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := bc.LaunchParams{
				Creator:       h.creator,
				Mint:          solana.NewWallet().PublicKey(),
				Name:          "Test Token",
				Symbol:        "TEST",
				InitialSupply: bc.DefaultInitialTokenSupply,
			}
			tt.mutate(&params)
			_, err := h.client.Launch.CreateLaunch(context.Background(), params)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("duplicate mint", func(t *testing.T) {
		h.launch(t)
		_, err := h.client.Launch.CreateLaunch(context.Background(), bc.LaunchParams{
			Creator:       h.creator,
			Mint:          h.mint,
			Name:          "Test Token",
			Symbol:        "TEST",
			InitialSupply: bc.DefaultInitialTokenSupply,
		})
		require.ErrorIs(t, err, bc.ErrLaunchExists)
	})
}

func TestBuy(t *testing.T) {
	h := newHarness(t, defaultParams())
	h.launch(t)
	h.ledger.Fund(h.trader, 10_000_000_000)

	rec, err := h.client.Trade.Buy(context.Background(), bc.BuyParams{
		Trader: h.trader,
		Mint:   h.mint,
		SolIn:  1_000_000_000,
	})
	require.NoError(t, err)

	require.Equal(t, uint64(34_277_831_558_567), rec.AmountOut)
	require.Equal(t, uint64(10_000_000), rec.Fee)
	require.False(t, rec.Graduated)

	curve := h.curve(t)
	require.Equal(t, uint64(30_990_000_000), curve.VirtualSolReserves)
	require.Equal(t, uint64(1_038_722_168_441_433), curve.VirtualTokenReserves)
	require.Equal(t, uint64(990_000_000), curve.RealSolReserves)
	require.Equal(t, uint64(758_822_168_441_433), curve.RealTokenReserves)
	require.Equal(t, bc.CompletionStateActive, curve.CompletionState)

	// Supply is conserved: trader holdings plus curve custody.
	require.Equal(t, rec.AmountOut, h.ledger.TokenBalance(h.mint, h.trader))
	require.Equal(t, uint64(bc.DefaultInitialTokenSupply)-rec.AmountOut, h.ledger.TokenBalance(h.mint, h.mint))

	// Lamports: trader paid the full gross, fee went to the recipient.
	require.Equal(t, uint64(9_000_000_000), h.ledger.LamportBalance(h.trader))
	require.Equal(t, uint64(990_000_000), h.ledger.LamportBalance(h.mint))
	require.Equal(t, uint64(10_000_000), h.ledger.LamportBalance(h.feeRecipient))

	cfg, err := h.ledger.Config(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000_000), cfg.TotalVolume)
	require.Equal(t, uint64(10_000_000), cfg.AccruedFees)

	stats, err := h.ledger.Stats(context.Background(), h.trader)
	require.NoError(t, err)
	require.Equal(t, rec.AmountOut, stats.TokensBought)
	require.Equal(t, uint64(1_000_000_000), stats.SolSpent)
	require.Equal(t, uint64(10_000_000), stats.FeesPaid)

	require.Len(t, h.sink.trades, 1)
	require.Empty(t, h.sink.graduations)
}

func TestBuyValidation(t *testing.T) {
	params := defaultParams()
	params.MinBuyAmount = 1_000
	params.MaxBuyAmount = 5_000_000_000
	h := newHarness(t, params)
	h.launch(t)
	h.ledger.Fund(h.trader, 10_000_000_000)

	buy := func(solIn, minOut uint64) error {
		_, err := h.client.Trade.Buy(context.Background(), bc.BuyParams{
			Trader: h.trader, Mint: h.mint, SolIn: solIn, MinTokensOut: minOut,
		})
		return err
	}

	require.ErrorIs(t, buy(0, 0), bc.ErrInvalidAmount)
	require.ErrorIs(t, buy(999, 0), bc.ErrBelowMinimumBuy)
	require.ErrorIs(t, buy(5_000_000_001, 0), bc.ErrAboveMaximumBuy)
	require.ErrorIs(t, buy(1_000_000, 1<<60), bc.ErrSlippageExceeded)

	_, err := h.client.Trade.Buy(context.Background(), bc.BuyParams{
		Trader: solana.NewWallet().PublicKey(), Mint: h.mint, SolIn: 1_000_000,
	})
	require.ErrorIs(t, err, bc.ErrInsufficientFunds)

	_, err = h.client.Trade.Buy(context.Background(), bc.BuyParams{
		Trader: h.trader, Mint: solana.NewWallet().PublicKey(), SolIn: 1_000_000,
	})
	require.ErrorIs(t, err, bc.ErrLaunchNotFound)

	// A failed buy leaves no trace.
	curve := h.curve(t)
	require.Equal(t, uint64(bc.DefaultVirtualSolReserves), curve.VirtualSolReserves)
	require.Equal(t, uint64(10_000_000_000), h.ledger.LamportBalance(h.trader))
	require.Empty(t, h.sink.trades)
}

func TestSell(t *testing.T) {
	h := newHarness(t, defaultParams())
	h.launch(t)
	h.ledger.Fund(h.trader, 10_000_000_000)

	buyRec, err := h.client.Trade.Buy(context.Background(), bc.BuyParams{
		Trader: h.trader, Mint: h.mint, SolIn: 1_000_000_000,
	})
	require.NoError(t, err)

	sellRec, err := h.client.Trade.Sell(context.Background(), bc.SellParams{
		Trader:   h.trader,
		Mint:     h.mint,
		TokensIn: buyRec.AmountOut / 2,
	})
	require.NoError(t, err)

	require.Equal(t, uint64(17_138_915_779_283), sellRec.AmountIn)
	require.Equal(t, uint64(498_004_574), sellRec.AmountOut)
	require.Equal(t, uint64(5_030_349), sellRec.Fee)

	curve := h.curve(t)
	require.Equal(t, uint64(30_486_965_077), curve.VirtualSolReserves)
	require.Equal(t, uint64(1_055_861_084_220_716), curve.VirtualTokenReserves)
	require.Equal(t, uint64(486_965_077), curve.RealSolReserves)
	require.Equal(t, uint64(775_961_084_220_716), curve.RealTokenReserves)

	// Trader ends up with less SOL than they started with.
	require.Less(t, h.ledger.LamportBalance(h.trader), uint64(10_000_000_000))
	require.Equal(t, buyRec.AmountOut-sellRec.AmountIn, h.ledger.TokenBalance(h.mint, h.trader))
	require.Equal(t, uint64(10_000_000+5_030_349), h.ledger.LamportBalance(h.feeRecipient))

	// Volume counts the gross SOL notional on both sides; SolReceived is the
	// net payout. Platform and per-trader volume stay on the same basis.
	stats, err := h.ledger.Stats(context.Background(), h.trader)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000_000+503_034_923), stats.VolumeTraded)
	require.Equal(t, uint64(498_004_574), stats.SolReceived)

	cfg, err := h.ledger.Config(context.Background())
	require.NoError(t, err)
	require.Equal(t, cfg.TotalVolume, stats.VolumeTraded)
}

func TestSellValidation(t *testing.T) {
	h := newHarness(t, defaultParams())
	h.launch(t)
	h.ledger.Fund(h.trader, 10_000_000_000)

	_, err := h.client.Trade.Sell(context.Background(), bc.SellParams{
		Trader: h.trader, Mint: h.mint, TokensIn: 0,
	})
	require.ErrorIs(t, err, bc.ErrInvalidAmount)

	_, err = h.client.Trade.Sell(context.Background(), bc.SellParams{
		Trader: h.trader, Mint: h.mint, TokensIn: 1_000_000,
	})
	require.ErrorIs(t, err, bc.ErrInsufficientTokenBalance)

	buyRec, err := h.client.Trade.Buy(context.Background(), bc.BuyParams{
		Trader: h.trader, Mint: h.mint, SolIn: 1_000_000_000,
	})
	require.NoError(t, err)

	_, err = h.client.Trade.Sell(context.Background(), bc.SellParams{
		Trader: h.trader, Mint: h.mint, TokensIn: buyRec.AmountOut, MinSolOut: 1 << 60,
	})
	require.ErrorIs(t, err, bc.ErrSlippageExceeded)
}

func TestPause(t *testing.T) {
	h := newHarness(t, defaultParams())
	h.launch(t)
	h.ledger.Fund(h.trader, 10_000_000_000)

	paused := true
	require.NoError(t, h.client.Admin.UpdateConfig(context.Background(), h.authority, bc.UpdateParams{Paused: &paused}))

	_, err := h.client.Trade.Buy(context.Background(), bc.BuyParams{Trader: h.trader, Mint: h.mint, SolIn: 1_000_000})
	require.ErrorIs(t, err, bc.ErrPlatformPaused)

	_, err = h.client.Launch.CreateLaunch(context.Background(), bc.LaunchParams{
		Creator: h.creator, Mint: solana.NewWallet().PublicKey(),
		Name: "Another", Symbol: "ANO", InitialSupply: 1_000_000,
	})
	require.ErrorIs(t, err, bc.ErrPlatformPaused)

	paused = false
	require.NoError(t, h.client.Admin.UpdateConfig(context.Background(), h.authority, bc.UpdateParams{Paused: &paused}))
	_, err = h.client.Trade.Buy(context.Background(), bc.BuyParams{Trader: h.trader, Mint: h.mint, SolIn: 1_000_000})
	require.NoError(t, err)
}

func TestGraduation(t *testing.T) {
	params := defaultParams()
	params.GraduationThreshold = 5_000_000_000
	h := newHarness(t, params)
	h.launch(t)
	h.ledger.Fund(h.trader, 20_000_000_000)

	// The buy that crosses the threshold succeeds and flips the curve.
	rec, err := h.client.Trade.Buy(context.Background(), bc.BuyParams{
		Trader: h.trader, Mint: h.mint, SolIn: 6_000_000_000,
	})
	require.NoError(t, err)
	require.True(t, rec.Graduated)
	require.Equal(t, uint64(5_940_000_000), rec.RealSolReserves)

	curve := h.curve(t)
	require.Equal(t, bc.CompletionStateGraduating, curve.CompletionState)

	require.Len(t, h.sink.graduations, 1)
	require.Equal(t, bc.CompletionStateGraduating, h.sink.graduations[0].State)
	require.Equal(t, uint64(5_940_000_000), h.sink.graduations[0].FinalSolReserves)

	// No further trading in the graduating state.
	_, err = h.client.Trade.Buy(context.Background(), bc.BuyParams{Trader: h.trader, Mint: h.mint, SolIn: 1_000_000})
	require.ErrorIs(t, err, bc.ErrCurveComplete)
	_, err = h.client.Trade.Sell(context.Background(), bc.SellParams{Trader: h.trader, Mint: h.mint, TokensIn: 1_000_000})
	require.ErrorIs(t, err, bc.ErrCurveComplete)
}

func TestMigrate(t *testing.T) {
	params := defaultParams()
	params.GraduationThreshold = 5_000_000_000
	h := newHarness(t, params)
	h.launch(t)
	h.ledger.Fund(h.trader, 20_000_000_000)

	// Not graduated yet.
	_, err := h.client.Migration.Migrate(context.Background(), h.authority, h.mint)
	require.ErrorIs(t, err, bc.ErrGraduationThresholdNotMet)

	_, err = h.client.Trade.Buy(context.Background(), bc.BuyParams{
		Trader: h.trader, Mint: h.mint, SolIn: 6_000_000_000,
	})
	require.NoError(t, err)

	// Only the authority may migrate.
	_, err = h.client.Migration.Migrate(context.Background(), h.trader, h.mint)
	require.ErrorIs(t, err, bc.ErrUnauthorized)

	summary, err := h.client.Migration.Migrate(context.Background(), h.authority, h.mint)
	require.NoError(t, err)
	require.Equal(t, h.mint, summary.Mint)
	require.Equal(t, uint64(5_940_000_000), summary.RealSolReserves)

	curve := h.curve(t)
	require.Equal(t, bc.CompletionStateMigrated, curve.CompletionState)

	// Migration is terminal.
	_, err = h.client.Migration.Migrate(context.Background(), h.authority, h.mint)
	require.ErrorIs(t, err, bc.ErrAlreadyMigrated)
	_, err = h.client.Trade.Buy(context.Background(), bc.BuyParams{Trader: h.trader, Mint: h.mint, SolIn: 1_000_000})
	require.ErrorIs(t, err, bc.ErrAlreadyMigrated)
}

func TestAdmin(t *testing.T) {
	h := newHarness(t, defaultParams())

	t.Run("double initialize", func(t *testing.T) {
		err := h.client.Admin.Initialize(context.Background(), bc.InitializeParams{
			Authority: h.authority, FeeRecipient: h.feeRecipient, FeeBasisPoints: 100,
		})
		require.ErrorIs(t, err, bc.ErrPlatformInitialized)
	})

	t.Run("update requires authority", func(t *testing.T) {
		fee := uint16(200)
		err := h.client.Admin.UpdateConfig(context.Background(), solana.NewWallet().PublicKey(), bc.UpdateParams{FeeBasisPoints: &fee})
		require.ErrorIs(t, err, bc.ErrUnauthorized)
	})

	t.Run("fee cap enforced", func(t *testing.T) {
		fee := uint16(1_001)
		err := h.client.Admin.UpdateConfig(context.Background(), h.authority, bc.UpdateParams{FeeBasisPoints: &fee})
		require.ErrorIs(t, err, bc.ErrInvalidFeeRate)
	})

	t.Run("withdraw fees", func(t *testing.T) {
		h.launch(t)
		h.ledger.Fund(h.trader, 10_000_000_000)
		_, err := h.client.Trade.Buy(context.Background(), bc.BuyParams{Trader: h.trader, Mint: h.mint, SolIn: 1_000_000_000})
		require.NoError(t, err)

		err = h.client.Admin.WithdrawFees(context.Background(), h.trader, 1)
		require.ErrorIs(t, err, bc.ErrUnauthorized)

		err = h.client.Admin.WithdrawFees(context.Background(), h.authority, 1<<60)
		require.ErrorIs(t, err, bc.ErrInsufficientFunds)

		require.NoError(t, h.client.Admin.WithdrawFees(context.Background(), h.authority, 10_000_000))
		require.Equal(t, uint64(10_000_000), h.ledger.LamportBalance(h.authority))
		require.Equal(t, uint64(0), h.ledger.LamportBalance(h.feeRecipient))

		cfg, err := h.ledger.Config(context.Background())
		require.NoError(t, err)
		require.Equal(t, uint64(0), cfg.AccruedFees)
	})
}

func TestQuotesMatchExecution(t *testing.T) {
	h := newHarness(t, defaultParams())
	h.launch(t)
	h.ledger.Fund(h.trader, 10_000_000_000)

	quote, err := h.client.Quote.BuyQuote(context.Background(), h.mint, 1_000_000_000, 50)
	require.NoError(t, err)

	rec, err := h.client.Trade.Buy(context.Background(), bc.BuyParams{
		Trader: h.trader, Mint: h.mint, SolIn: 1_000_000_000, MinTokensOut: quote.MinAmountOut,
	})
	require.NoError(t, err)
	require.Equal(t, quote.AmountOut, rec.AmountOut)
	require.Equal(t, quote.Fee, rec.Fee)
	require.LessOrEqual(t, quote.MinAmountOut, quote.AmountOut)

	sellQuote, err := h.client.Quote.SellQuote(context.Background(), h.mint, rec.AmountOut, 0)
	require.NoError(t, err)
	sellRec, err := h.client.Trade.Sell(context.Background(), bc.SellParams{
		Trader: h.trader, Mint: h.mint, TokensIn: rec.AmountOut, MinSolOut: sellQuote.MinAmountOut,
	})
	require.NoError(t, err)
	require.Equal(t, sellQuote.AmountOut, sellRec.AmountOut)

	// Round trip never pays out more than went in.
	require.LessOrEqual(t, sellRec.AmountOut, rec.AmountIn)
}

func TestProgressAndSpotPrice(t *testing.T) {
	params := defaultParams()
	params.GraduationThreshold = 5_000_000_000
	h := newHarness(t, params)
	h.launch(t)
	h.ledger.Fund(h.trader, 20_000_000_000)

	progress, err := h.client.Quote.Progress(context.Background(), h.mint)
	require.NoError(t, err)
	require.True(t, progress.IsZero())

	price0, err := h.client.Quote.SpotPrice(context.Background(), h.mint)
	require.NoError(t, err)
	require.True(t, price0.IsPositive())

	_, err = h.client.Trade.Buy(context.Background(), bc.BuyParams{Trader: h.trader, Mint: h.mint, SolIn: 2_000_000_000})
	require.NoError(t, err)

	progress, err = h.client.Quote.Progress(context.Background(), h.mint)
	require.NoError(t, err)
	require.True(t, progress.IsPositive())

	// Buys push the spot price up.
	price1, err := h.client.Quote.SpotPrice(context.Background(), h.mint)
	require.NoError(t, err)
	require.True(t, price1.GreaterThan(price0))

	// Crossing the threshold caps progress at 100.
	_, err = h.client.Trade.Buy(context.Background(), bc.BuyParams{Trader: h.trader, Mint: h.mint, SolIn: 6_000_000_000})
	require.NoError(t, err)
	progress, err = h.client.Quote.Progress(context.Background(), h.mint)
	require.NoError(t, err)
	require.Equal(t, "100", progress.String())
}

func TestConcurrentTradesAccrueAllFees(t *testing.T) {
	h := newHarness(t, defaultParams())
	h.launch(t)

	mint2 := solana.NewWallet().PublicKey()
	trader2 := solana.NewWallet().PublicKey()
	_, err := h.client.Launch.CreateLaunch(context.Background(), bc.LaunchParams{
		Creator:       h.creator,
		Mint:          mint2,
		Name:          "Second Token",
		Symbol:        "SECOND",
		InitialSupply: bc.DefaultInitialTokenSupply,
	})
	require.NoError(t, err)

	const (
		buysPerCurve = 50
		solIn        = uint64(10_000_000)
		feePerBuy    = uint64(100_000) // 100 bps of solIn
	)
	h.ledger.Fund(h.trader, buysPerCurve*solIn)
	h.ledger.Fund(trader2, buysPerCurve*solIn)

	// Trades on different curves run concurrently; only trades on the same
	// curve are serialized. Every fee increment must still land.
	var wg sync.WaitGroup
	run := func(trader, mint solana.PublicKey) {
		defer wg.Done()
		for i := 0; i < buysPerCurve; i++ {
			if _, err := h.client.Trade.Buy(context.Background(), bc.BuyParams{
				Trader: trader, Mint: mint, SolIn: solIn,
			}); err != nil {
				t.Error(err)
				return
			}
		}
	}
	wg.Add(2)
	go run(h.trader, h.mint)
	go run(trader2, mint2)
	wg.Wait()

	cfg, err := h.ledger.Config(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2*buysPerCurve*feePerBuy, cfg.AccruedFees)
	require.Equal(t, 2*buysPerCurve*solIn, cfg.TotalVolume)

	stats1, err := h.ledger.Stats(context.Background(), h.trader)
	require.NoError(t, err)
	stats2, err := h.ledger.Stats(context.Background(), trader2)
	require.NoError(t, err)
	require.Equal(t, cfg.TotalVolume, stats1.VolumeTraded+stats2.VolumeTraded)
	require.Equal(t, cfg.AccruedFees, stats1.FeesPaid+stats2.FeesPaid)
}

func TestReserveInvariantsAcrossSequence(t *testing.T) {
	h := newHarness(t, defaultParams())
	h.launch(t)
	h.ledger.Fund(h.trader, 100_000_000_000)

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		rec, err := h.client.Trade.Buy(ctx, bc.BuyParams{Trader: h.trader, Mint: h.mint, SolIn: 500_000_000})
		require.NoError(t, err)

		if i%3 == 2 {
			_, err = h.client.Trade.Sell(ctx, bc.SellParams{Trader: h.trader, Mint: h.mint, TokensIn: rec.AmountOut / 2})
			require.NoError(t, err)
		}

		curve := h.curve(t)
		require.NoError(t, curve.Validate())
		require.Equal(t, uint64(bc.DefaultInitialTokenSupply), curve.TotalSupply)

		// Circulating plus custody always equals total supply.
		held := h.ledger.TokenBalance(h.mint, h.trader) + h.ledger.TokenBalance(h.mint, h.mint)
		require.Equal(t, curve.TotalSupply, held)
	}
}
