package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/shinyyama/uniforme-store/internal/config"
	"github.com/shinyyama/uniforme-store/internal/db"
	"github.com/shinyyama/uniforme-store/internal/model"
	"github.com/shinyyama/uniforme-store/internal/repository"
	"github.com/shinyyama/uniforme-store/internal/service"
)

// report prints the order dashboard numbers to the terminal.
func main() {
	recent := flag.Int("recent", 10, "number of recent orders to list")
	status := flag.String("status", "", "only list recent orders with this status")
	flag.Parse()

	if err := run(*recent, model.OrderStatus(*status)); err != nil {
		log.Fatalf("report failed: %v", err)
	}
}

func run(recent int, status model.OrderStatus) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}

	orderRepo := repository.NewOrderRepository(gdb)
	bolsaRepo := repository.NewBolsaPaymentRepository(gdb)
	orders := service.NewOrderService(orderRepo, nil, nil)

	stats, err := orders.Stats(ctx)
	if err != nil {
		return fmt.Errorf("order stats: %w", err)
	}
	pendingBolsa, err := bolsaRepo.CountByStatus(ctx, model.BolsaStatusPending)
	if err != nil {
		return fmt.Errorf("count bolsa: %w", err)
	}
	list, _, err := orders.List(ctx, repository.OrderFilter{Status: status, Page: repository.Page{Limit: recent}})
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}

	printStats(os.Stdout, stats, pendingBolsa)
	fmt.Fprintln(os.Stdout)
	printOrders(os.Stdout, list)
	return nil
}

func printStats(w io.Writer, stats *service.OrderStats, pendingBolsa int64) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tORDERS")
	statuses := make([]string, 0, len(stats.ByStatus))
	for s := range stats.ByStatus {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		fmt.Fprintf(tw, "%s\t%d\n", s, stats.ByStatus[model.OrderStatus(s)])
	}
	fmt.Fprintf(tw, "total\t%d\n", stats.TotalOrders)
	fmt.Fprintf(tw, "paid revenue\tR$ %s\n", stats.PaidRevenue.StringFixed(2))
	fmt.Fprintf(tw, "bolsa pending review\t%d\n", pendingBolsa)
	tw.Flush()
}

func printOrders(w io.Writer, orders []model.Order) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tCUSTOMER\tMETHOD\tSTATUS\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			o.ID,
			o.CreatedAt.Format("2006-01-02 15:04"),
			truncateText(o.CustomerName, 28),
			o.PaymentMethod,
			o.Status,
			o.Total.StringFixed(2))
	}
	tw.Flush()
}

func truncateText(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
