package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/tdex-network/xpub-balance/internal/core/application"
	"github.com/tdex-network/xpub-balance/internal/core/domain"
)

const satsPerBtcExp = -8

func printAddress(w io.Writer, d domain.AddressDetail) error {
	_, err := fmt.Fprintf(w, "%-8s %s\n", d.Path(), d.Address)
	return err
}

func printReport(w io.Writer, report *application.BalanceReport, inBtc bool) {
	for _, d := range report.Details {
		fmt.Fprintf(
			w, "%-8s %s  %s  %s\n",
			d.Path(), d.Address, formatAmount(d.Balance, inBtc),
			formatTxCount(d.TxCount),
		)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(
		w, "-> total balance     : %s\n", formatAmount(report.Totals.Balance, inBtc),
	)
	fmt.Fprintf(
		w, "-> total transactions: %s\n", formatTxCount(report.Totals.TxCount),
	)
}

func formatAmount(sats int64, inBtc bool) string {
	if inBtc {
		return decimal.New(sats, satsPerBtcExp).StringFixed(8) + " BTC"
	}
	return humanize.Comma(sats) + " sat"
}

func formatTxCount(count int64) string {
	return humanize.Comma(count) + " txs"
}
