package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/statementworks/recon/internal/model"
	"github.com/statementworks/recon/internal/reconcile"
	"github.com/statementworks/recon/internal/service"
)

// ErrReviewQuit is returned when the user quits the review loop.
var ErrReviewQuit = errors.New("review quit")

// Reviewer is the slice of the engine the prompt loop drives.
type Reviewer interface {
	Transaction(ctx context.Context, id string) (*model.Transaction, error)
	ConfirmMatch(ctx context.Context, id string) (*model.Transaction, error)
	RejectMatch(ctx context.Context, id string) (*model.Transaction, error)
	EditMatch(ctx context.Context, id string) (*model.Transaction, error)
	ApplySuggestion(ctx context.Context, id string) (*model.Transaction, error)
	CloseSuggestion(ctx context.Context, id string) (*model.Transaction, error)
	UpdateField(ctx context.Context, id string, field reconcile.Field, value string) (*model.Transaction, *reconcile.BulkAction, error)
	BulkApply(ctx context.Context, action *reconcile.BulkAction, learn bool) (*service.BulkResult, error)
}

// Lookups resolves category and customer choices during review.
type Lookups interface {
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCustomers(ctx context.Context) ([]model.Customer, error)
}

// ReviewSummary reports what one review session did.
type ReviewSummary struct {
	Confirmed   int
	Rejected    int
	Classified  int
	BulkApplied int
	Skipped     int
}

// Prompter runs the interactive transaction review loop.
type Prompter struct {
	reviewer Reviewer
	lookups  Lookups
	reader   *NonBlockingReader
	writer   io.Writer
}

// NewPrompter creates a prompter reading from reader and writing to writer.
// Nil arguments default to stdin/stdout.
func NewPrompter(reviewer Reviewer, lookups Lookups, reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reviewer: reviewer,
		lookups:  lookups,
		reader:   NewNonBlockingReader(reader),
		writer:   writer,
	}
}

// ReviewStatement walks every transaction that still needs attention:
// unconfirmed auto-matches, suggestions, and unclassified rows.
func (p *Prompter) ReviewStatement(ctx context.Context, stmt *model.Statement, txns []model.Transaction) (*ReviewSummary, error) {
	summary := &ReviewSummary{}

	fmt.Fprintln(p.writer, FormatTitle(fmt.Sprintf("Reviewing %s %s (%s to %s)",
		stmt.Bank, stmt.Currency,
		stmt.PeriodStart.Format("2006-01-02"), stmt.PeriodEnd.Format("2006-01-02"))))

	for i := range txns {
		// Refetch: an earlier bulk apply may have classified this row already.
		txn, err := p.reviewer.Transaction(ctx, txns[i].ID)
		if err != nil {
			return summary, err
		}
		if !needsReview(txn) {
			continue
		}

		err = p.reviewOne(ctx, txn, summary)
		if errors.Is(err, ErrReviewQuit) || errors.Is(err, ErrInputCancelled) {
			break
		}
		if err != nil {
			return summary, err
		}
	}

	fmt.Fprintln(p.writer)
	fmt.Fprintln(p.writer, FormatSuccess(fmt.Sprintf(
		"Session done: %d confirmed, %d rejected, %d classified, %d bulk-applied, %d skipped",
		summary.Confirmed, summary.Rejected, summary.Classified, summary.BulkApplied, summary.Skipped)))

	return summary, nil
}

func needsReview(txn *model.Transaction) bool {
	if txn.AutoMatched && !txn.MatchConfirmed {
		return true
	}
	if txn.SuggestedMatch != nil {
		return true
	}
	return reconcile.Status(*txn) == model.StatusPending
}

func (p *Prompter) reviewOne(ctx context.Context, txn *model.Transaction, summary *ReviewSummary) error {
	fmt.Fprintln(p.writer, RenderBox("Transaction", p.formatTransaction(txn)))

	switch {
	case txn.AutoMatched && !txn.MatchConfirmed:
		return p.reviewAutoMatch(ctx, txn, summary)
	case txn.SuggestedMatch != nil:
		return p.reviewSuggestion(ctx, txn, summary)
	default:
		return p.classify(ctx, txn, summary)
	}
}

func (p *Prompter) formatTransaction(txn *model.Transaction) string {
	amount := AmountInStyle.Render(fmt.Sprintf("%+.2f", txn.Amount))
	if txn.Amount < 0 {
		amount = AmountOutStyle.Render(fmt.Sprintf("%.2f", txn.Amount))
	}

	lines := []string{
		fmt.Sprintf("%s  %s", txn.Date.Format("2006-01-02"), txn.Description),
		fmt.Sprintf("Amount: %s   Balance: %.2f", amount, txn.Balance),
	}

	if txn.Type != "" {
		lines = append(lines, SubtleStyle.Render("Type: "+string(txn.Type)))
	}
	if txn.AutoMatched {
		tier := string(reconcile.TierFor(txn.Confidence))
		lines = append(lines, WarningStyle.Render(fmt.Sprintf(
			"Auto-matched (%s confidence %.0f%%)", tier, txn.Confidence*100)))
	}
	if sm := txn.SuggestedMatch; sm != nil {
		lines = append(lines, InfoStyle.Render(fmt.Sprintf(
			"Suggested: %s (confidence %.0f%%, seen %d times)",
			sm.Type, sm.Confidence*100, sm.MatchCount)))
	}
	return strings.Join(lines, "\n")
}

func (p *Prompter) reviewAutoMatch(ctx context.Context, txn *model.Transaction, summary *ReviewSummary) error {
	fmt.Fprintln(p.writer, "  [c] Confirm match")
	fmt.Fprintln(p.writer, "  [e] Keep values, edit manually")
	fmt.Fprintln(p.writer, "  [r] Reject and reclassify")
	fmt.Fprintln(p.writer, "  [s] Skip   [q] Quit")

	choice, err := p.promptChoice(ctx, "Choice", []string{"c", "e", "r", "s", "q"})
	if err != nil {
		return err
	}

	switch choice {
	case "c":
		if _, err := p.reviewer.ConfirmMatch(ctx, txn.ID); err != nil {
			return err
		}
		summary.Confirmed++
		fmt.Fprintln(p.writer, FormatSuccess("Match confirmed"))
	case "e":
		updated, err := p.reviewer.EditMatch(ctx, txn.ID)
		if err != nil {
			return err
		}
		*txn = *updated
		return p.classify(ctx, txn, summary)
	case "r":
		updated, err := p.reviewer.RejectMatch(ctx, txn.ID)
		if err != nil {
			return err
		}
		summary.Rejected++
		*txn = *updated
		return p.classify(ctx, txn, summary)
	case "s":
		summary.Skipped++
	case "q":
		return ErrReviewQuit
	}
	return nil
}

func (p *Prompter) reviewSuggestion(ctx context.Context, txn *model.Transaction, summary *ReviewSummary) error {
	fmt.Fprintln(p.writer, "  [a] Apply suggestion")
	fmt.Fprintln(p.writer, "  [x] Dismiss and classify manually")
	fmt.Fprintln(p.writer, "  [s] Skip   [q] Quit")

	choice, err := p.promptChoice(ctx, "Choice", []string{"a", "x", "s", "q"})
	if err != nil {
		return err
	}

	switch choice {
	case "a":
		if _, err := p.reviewer.ApplySuggestion(ctx, txn.ID); err != nil {
			return err
		}
		summary.Classified++
		fmt.Fprintln(p.writer, FormatSuccess("Suggestion applied"))
	case "x":
		updated, err := p.reviewer.CloseSuggestion(ctx, txn.ID)
		if err != nil {
			return err
		}
		*txn = *updated
		return p.classify(ctx, txn, summary)
	case "s":
		summary.Skipped++
	case "q":
		return ErrReviewQuit
	}
	return nil
}

// transactionTypes in prompt order.
var transactionTypes = []model.TransactionType{
	model.TypeCollection,
	model.TypePayment,
	model.TypeRefund,
	model.TypeFXBuy,
	model.TypeFXSell,
	model.TypeTransfer,
	model.TypeOther,
}

func (p *Prompter) classify(ctx context.Context, txn *model.Transaction, summary *ReviewSummary) error {
	for i, t := range transactionTypes {
		fmt.Fprintf(p.writer, "  [%d] %s\n", i+1, t)
	}
	fmt.Fprintln(p.writer, "  [s] Skip   [q] Quit")

	valid := []string{"s", "q"}
	for i := range transactionTypes {
		valid = append(valid, strconv.Itoa(i+1))
	}
	choice, err := p.promptChoice(ctx, "Type", valid)
	if err != nil {
		return err
	}
	switch choice {
	case "s":
		summary.Skipped++
		return nil
	case "q":
		return ErrReviewQuit
	}

	idx, _ := strconv.Atoi(choice)
	txnType := transactionTypes[idx-1]

	updated, bulk, err := p.reviewer.UpdateField(ctx, txn.ID, reconcile.FieldType, string(txnType))
	if err != nil {
		return err
	}
	*txn = *updated

	if err := p.fillRequiredFields(ctx, txn); err != nil {
		return err
	}
	summary.Classified++
	fmt.Fprintln(p.writer, FormatSuccess("Classified as "+string(txnType)))

	if bulk != nil {
		return p.offerBulk(ctx, bulk, summary)
	}
	return nil
}

// fillRequiredFields walks the remaining prompts the chosen type demands.
func (p *Prompter) fillRequiredFields(ctx context.Context, txn *model.Transaction) error {
	if reconcile.RequiresCategory(txn.Type) && txn.CategoryID == "" {
		id, err := p.selectCategory(ctx, "")
		if err != nil {
			return err
		}
		if id != "" {
			updated, _, err := p.reviewer.UpdateField(ctx, txn.ID, reconcile.FieldCategory, id)
			if err != nil {
				return err
			}
			*txn = *updated

			subID, err := p.selectCategory(ctx, id)
			if err != nil {
				return err
			}
			if subID != "" {
				if updated, _, err = p.reviewer.UpdateField(ctx, txn.ID, reconcile.FieldSubCategory, subID); err != nil {
					return err
				}
				*txn = *updated
			}
		}
	}

	if reconcile.RequiresCustomer(txn.Type) && txn.CustomerID == "" {
		id, err := p.selectCustomer(ctx)
		if err != nil {
			return err
		}
		if id != "" {
			updated, _, err := p.reviewer.UpdateField(ctx, txn.ID, reconcile.FieldCustomer, id)
			if err != nil {
				return err
			}
			*txn = *updated
		}
	}

	if reconcile.RequiresCurrencyPair(txn.Type) && txn.CurrencyPair == "" {
		fmt.Fprint(p.writer, FormatPrompt("Currency pair (e.g. USD/TRY, blank to skip)"))
		pair, err := p.reader.ReadLine(ctx)
		if err != nil {
			return err
		}
		if pair != "" {
			updated, _, err := p.reviewer.UpdateField(ctx, txn.ID, reconcile.FieldCurrencyPair, pair)
			if err != nil {
				return err
			}
			*txn = *updated
		}
	}
	return nil
}

func (p *Prompter) offerBulk(ctx context.Context, bulk *reconcile.BulkAction, summary *ReviewSummary) error {
	fmt.Fprintln(p.writer, FormatInfo(fmt.Sprintf(
		"%d other pending transactions match %q", len(bulk.IDs), bulk.Key)))

	if bulk.SourceCurrencyPair != "" {
		fmt.Fprintln(p.writer, SubtleStyle.Render(
			"Currency pair "+bulk.SourceCurrencyPair+" will be copied along"))
	}
	fmt.Fprint(p.writer, FormatPrompt("Apply to all and learn pattern? [y/n]"))

	choice, err := p.promptChoice(ctx, "", []string{"y", "n"})
	if err != nil {
		return err
	}
	if choice != "y" {
		return nil
	}

	result, err := p.reviewer.BulkApply(ctx, bulk, true)
	if err != nil {
		return err
	}
	summary.BulkApplied += len(result.Updated)
	fmt.Fprintln(p.writer, FormatSuccess(fmt.Sprintf("Applied to %d transactions", len(result.Updated))))
	if result.LearnedPattern != nil {
		fmt.Fprintln(p.writer, FormatInfo("Learned pattern: "+result.LearnedPattern.NormalizedKey))
	}
	return nil
}

// selectCategory prompts for a category. A non-empty parentID restricts the
// list to that parent's sub-categories.
func (p *Prompter) selectCategory(ctx context.Context, parentID string) (string, error) {
	cats, err := p.lookups.GetCategories(ctx)
	if err != nil {
		return "", err
	}

	var options []model.Category
	for _, cat := range cats {
		if cat.ParentID == parentID {
			options = append(options, cat)
		}
	}
	if len(options) == 0 {
		return "", nil
	}

	label := "Category"
	if parentID != "" {
		label = "Sub-category"
	}
	for i, cat := range options {
		fmt.Fprintf(p.writer, "  [%d] %s\n", i+1, cat.Name)
	}
	fmt.Fprint(p.writer, FormatPrompt(label+" (blank to skip)"))

	return p.pickOption(ctx, len(options), func(i int) string { return options[i].ID })
}

func (p *Prompter) selectCustomer(ctx context.Context) (string, error) {
	customers, err := p.lookups.GetCustomers(ctx)
	if err != nil {
		return "", err
	}
	if len(customers) == 0 {
		return "", nil
	}

	for i, cust := range customers {
		fmt.Fprintf(p.writer, "  [%d] %s\n", i+1, cust.Name)
	}
	fmt.Fprint(p.writer, FormatPrompt("Customer (blank to skip)"))

	return p.pickOption(ctx, len(customers), func(i int) string { return customers[i].ID })
}

func (p *Prompter) pickOption(ctx context.Context, count int, idAt func(int) string) (string, error) {
	for {
		line, err := p.reader.ReadLine(ctx)
		if err != nil {
			return "", err
		}
		if line == "" {
			return "", nil
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= count {
			return idAt(n - 1), nil
		}
		fmt.Fprint(p.writer, FormatPrompt(fmt.Sprintf("Enter 1-%d or blank", count)))
	}
}

func (p *Prompter) promptChoice(ctx context.Context, label string, valid []string) (string, error) {
	if label != "" {
		fmt.Fprint(p.writer, FormatPrompt(label))
	}
	for {
		line, err := p.reader.ReadLine(ctx)
		if err != nil {
			return "", err
		}
		line = strings.ToLower(strings.TrimSpace(line))
		for _, v := range valid {
			if line == v {
				return line, nil
			}
		}
		fmt.Fprint(p.writer, FormatPrompt("Valid choices: "+strings.Join(valid, ", ")))
	}
}
