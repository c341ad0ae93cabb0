package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/logging"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/metrics"
)

// Result is returned by single-recipient operations. On the wire the channel
// outcome, or the lookup error when there is one, is nested under "details".
type Result struct {
	Success bool
	Outcome Outcome
	Error   string
}

type errorDetails struct {
	Error string `json:"error"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(struct {
			Success bool         `json:"success"`
			Details errorDetails `json:"details"`
		}{r.Success, errorDetails{r.Error}})
	}
	out := r.Outcome
	if out.Errors == nil {
		out.Errors = []string{}
	}
	return json.Marshal(struct {
		Success bool    `json:"success"`
		Details Outcome `json:"details"`
	}{r.Success, out})
}

func (r *Result) UnmarshalJSON(b []byte) error {
	var in struct {
		Success bool `json:"success"`
		Details struct {
			Outcome
			Error string `json:"error"`
		} `json:"details"`
	}
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*r = Result{Success: in.Success, Outcome: in.Details.Outcome, Error: in.Details.Error}
	return nil
}

// RecipientResult is one entry of a fan-out.
type RecipientResult struct {
	UserID  string  `json:"user_id"`
	Success bool    `json:"success"`
	Outcome Outcome `json:"details"`
}

// FanOutResult is returned by operations that may notify several users.
// Success is true when at least one recipient had at least one channel succeed.
// The counts, per-recipient results and any error are nested under "details".
type FanOutResult struct {
	Success    bool
	Total      int
	Successful int
	Recipients []RecipientResult
	Error      string
}

type fanOutDetails struct {
	Total      int               `json:"total"`
	Successful int               `json:"successful"`
	Results    []RecipientResult `json:"results"`
	Error      string            `json:"error,omitempty"`
}

type fanOutJSON struct {
	Success bool          `json:"success"`
	Details fanOutDetails `json:"details"`
}

func (f FanOutResult) MarshalJSON() ([]byte, error) {
	results := f.Recipients
	if results == nil {
		results = []RecipientResult{}
	}
	return json.Marshal(fanOutJSON{
		Success: f.Success,
		Details: fanOutDetails{Total: f.Total, Successful: f.Successful, Results: results, Error: f.Error},
	})
}

func (f *FanOutResult) UnmarshalJSON(b []byte) error {
	var in fanOutJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*f = FanOutResult{
		Success:    in.Success,
		Total:      in.Details.Total,
		Successful: in.Details.Successful,
		Recipients: in.Details.Results,
		Error:      in.Details.Error,
	}
	return nil
}

func failed(err error) Result {
	return Result{Success: false, Outcome: Outcome{Errors: []string{}}, Error: err.Error()}
}

func single(out Outcome) Result {
	return Result{Success: out.Success(), Outcome: out}
}

// preferenceOptions gates SMS and email strictly on the user's own flags.
func preferenceOptions(u domain.User) Options {
	return Options{IncludeInApp: true, IncludeSMS: u.SMSNotifications, IncludeEmail: u.EmailNotifications}
}

// piggybackOptions attempts SMS whenever email is enabled.
// TODO: drop SMSFollowsEmail once product confirms whether order confirmations should honor SMSNotifications.
func piggybackOptions(u domain.User) Options {
	return Options{IncludeInApp: true, IncludeEmail: u.EmailNotifications, SMSFollowsEmail: true}
}

func (r *Registry) resolve(ctx context.Context, id string) (*domain.User, error) {
	if r.users == nil {
		return nil, fmt.Errorf("user directory %w", errNotConfigured)
	}
	u, err := r.users.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup user %s: %w", id, err)
	}
	if u == nil {
		return nil, fmt.Errorf("%w: %s", ErrRecipientNotFound, id)
	}
	return u, nil
}

func (r *Registry) notFound(event domain.EventType, id string, err error) {
	metrics.IncRecipientNotFound()
	logging.Get().Error().Err(err).Str("event", string(event)).Str("recipient", id).Msg("notification recipient could not be resolved")
}

func observe(event domain.EventType, start time.Time) {
	metrics.ObserveDispatch(string(event), time.Since(start))
}

// SendCustomerOrderConfirmation notifies the customer who placed order.
// SMS follows the customer's email preference.
func (r *Registry) SendCustomerOrderConfirmation(ctx context.Context, customerID string, order domain.Order, items []domain.OrderItem, deliveryAddress *domain.Address) Result {
	defer observe(domain.EventOrderConfirmation, time.Now())
	customer, err := r.resolve(ctx, customerID)
	if err != nil {
		r.notFound(domain.EventOrderConfirmation, customerID, err)
		return failed(err)
	}
	payload := domain.OrderConfirmation{Order: order, Items: items, DeliveryAddress: deliveryAddress}
	return single(r.Process(ctx, *customer, payload, piggybackOptions(*customer)))
}

// SendStaffOrderAlert notifies every staff and admin user about a new order.
// Each recipient uses their own language and flags, with SMS following email.
func (r *Registry) SendStaffOrderAlert(ctx context.Context, order domain.Order, items []domain.OrderItem, customer *domain.User, deliveryAddress *domain.Address) FanOutResult {
	defer observe(domain.EventStaffNewOrderAlert, time.Now())
	payload := domain.StaffOrderAlert{Order: order, Items: items, DeliveryAddress: deliveryAddress}
	if customer != nil {
		payload.CustomerName = customer.DisplayName()
	}
	res := r.notifyStaff(ctx, payload, piggybackOptions)
	r.mirror(ctx, payload)
	return res
}

// SendOrderStatusUpdate tells a customer their order moved to newStatus.
// oldStatus may be empty.
func (r *Registry) SendOrderStatusUpdate(ctx context.Context, customerID string, order domain.Order, newStatus, oldStatus string) Result {
	defer observe(domain.EventOrderStatusUpdate, time.Now())
	customer, err := r.resolve(ctx, customerID)
	if err != nil {
		r.notFound(domain.EventOrderStatusUpdate, customerID, err)
		return failed(err)
	}
	payload := domain.OrderStatusUpdate{Order: order, NewStatus: newStatus, OldStatus: oldStatus}
	return single(r.Process(ctx, *customer, payload, preferenceOptions(*customer)))
}

// SendOrderNoteNotification delivers a note either to the order's customer
// (notifyCustomer) or to all staff and admins.
func (r *Registry) SendOrderNoteNotification(ctx context.Context, order domain.Order, note string, fromUser *domain.User, notifyCustomer bool) FanOutResult {
	defer observe(domain.EventOrderNote, time.Now())
	payload := domain.OrderNote{Order: order, Note: note}
	if fromUser != nil {
		payload.Author = fromUser.DisplayName()
	}
	if !notifyCustomer {
		res := r.notifyStaff(ctx, payload, preferenceOptions)
		r.mirror(ctx, payload)
		return res
	}
	customer, err := r.resolve(ctx, order.CustomerID)
	if err != nil {
		r.notFound(domain.EventOrderNote, order.CustomerID, err)
		return FanOutResult{Success: false, Recipients: []RecipientResult{}, Error: err.Error()}
	}
	out := r.Process(ctx, *customer, payload, preferenceOptions(*customer))
	rr := RecipientResult{UserID: customer.ID, Success: out.Success(), Outcome: out}
	res := FanOutResult{Success: rr.Success, Total: 1, Recipients: []RecipientResult{rr}}
	if rr.Success {
		res.Successful = 1
	}
	return res
}

// SendAccountApprovalNotification emails login credentials to a newly
// approved customer. In-app and SMS are never used for credentials.
func (r *Registry) SendAccountApprovalNotification(ctx context.Context, customer *domain.User, username, password string, customerLevel int, creditLimit float64) Result {
	defer observe(domain.EventAccountApproved, time.Now())
	if customer == nil {
		err := fmt.Errorf("%w: no customer supplied", ErrRecipientNotFound)
		r.notFound(domain.EventAccountApproved, "", err)
		return failed(err)
	}
	payload := domain.AccountApproval{Username: username, Password: password, CustomerLevel: customerLevel, CreditLimit: creditLimit}
	return single(r.Process(ctx, *customer, payload, Options{IncludeEmail: true}))
}

// notifyStaff processes payload for every staff and admin user concurrently
// and waits for all of them. Result order follows the directory listing.
func (r *Registry) notifyStaff(ctx context.Context, payload domain.Payload, optsFor func(domain.User) Options) FanOutResult {
	if r.users == nil {
		return FanOutResult{Recipients: []RecipientResult{}, Error: fmt.Sprintf("user directory %v", errNotConfigured)}
	}
	staff, err := r.users.ListStaffAndAdmins(ctx)
	if err != nil {
		logging.Get().Error().Err(err).Str("event", string(payload.EventType())).Msg("failed to load staff recipients")
		return FanOutResult{Recipients: []RecipientResult{}, Error: fmt.Sprintf("list staff: %v", err)}
	}

	results := make([]RecipientResult, len(staff))
	var wg sync.WaitGroup
	for i, u := range staff {
		wg.Add(1)
		go func(i int, u domain.User) {
			defer wg.Done()
			out := r.Process(ctx, u, payload, optsFor(u))
			results[i] = RecipientResult{UserID: u.ID, Success: out.Success(), Outcome: out}
		}(i, u)
	}
	wg.Wait()
	metrics.AddFanOutRecipients(len(staff))

	res := FanOutResult{Total: len(results), Recipients: results}
	for _, rr := range results {
		if rr.Success {
			res.Successful++
		}
	}
	res.Success = res.Successful > 0
	logging.Get().Info().Str("event", string(payload.EventType())).Int("total", res.Total).Int("successful", res.Successful).Msg("staff notification fan-out complete")
	return res
}

func (r *Registry) mirror(ctx context.Context, payload domain.Payload) {
	if r.broadcaster == nil {
		return
	}
	r.broadcaster.Send(ctx, Title(payload), Message(payload))
}
