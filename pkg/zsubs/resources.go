package zsubs

import "sort"

// Typed views of the entities. They are decoded from a Record with
// Record.Decode and only describe the commonly used attributes; the Record
// keeps everything the API returned.

// Address is a billing or shipping address.
type Address struct {
	Attention string `json:"attention,omitempty" yaml:"attention,omitempty"`
	Street    string `json:"street,omitempty"    yaml:"street,omitempty"`
	City      string `json:"city,omitempty"      yaml:"city,omitempty"`
	State     string `json:"state,omitempty"     yaml:"state,omitempty"`
	Zip       string `json:"zip,omitempty"       yaml:"zip,omitempty"`
	Country   string `json:"country,omitempty"   yaml:"country,omitempty"`
	Fax       string `json:"fax,omitempty"       yaml:"fax,omitempty"`
}

// CustomField is one indexed custom field value.
type CustomField struct {
	Index int    `json:"index"           yaml:"index"`
	Value any    `json:"value"           yaml:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// CustomFields is the list form used by the API, accessed by index.
type CustomFields []CustomField

// Get returns the value stored at index.
func (c CustomFields) Get(index int) (any, bool) {
	for _, f := range c {
		if f.Index == index {
			return f.Value, true
		}
	}

	return nil, false
}

// Set stores value at index, keeping the list sorted by index.
func (c CustomFields) Set(index int, value any) CustomFields {
	for i := range c {
		if c[i].Index == index {
			c[i].Value = value

			return c
		}
	}

	out := append(c, CustomField{Index: index, Value: value})
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })

	return out
}

// List returns the attribute tree form sent to the API.
func (c CustomFields) List() List {
	out := make(List, 0, len(c))
	for _, f := range c {
		out = append(out, MapOf("index", f.Index, "value", f.Value))
	}

	return out
}

// Customer represents a customer.
type Customer struct {
	CustomerID      string       `json:"customer_id"                yaml:"customer_id"`
	DisplayName     string       `json:"display_name"               yaml:"display_name"`
	FirstName       string       `json:"first_name,omitempty"       yaml:"first_name,omitempty"`
	LastName        string       `json:"last_name,omitempty"        yaml:"last_name,omitempty"`
	Email           string       `json:"email"                      yaml:"email"`
	CompanyName     string       `json:"company_name,omitempty"     yaml:"company_name,omitempty"`
	Phone           string       `json:"phone,omitempty"            yaml:"phone,omitempty"`
	Mobile          string       `json:"mobile,omitempty"           yaml:"mobile,omitempty"`
	Website         string       `json:"website,omitempty"          yaml:"website,omitempty"`
	Status          string       `json:"status,omitempty"           yaml:"status,omitempty"`
	CurrencyCode    string       `json:"currency_code,omitempty"    yaml:"currency_code,omitempty"`
	BillingAddress  *Address     `json:"billing_address,omitempty"  yaml:"billing_address,omitempty"`
	ShippingAddress *Address     `json:"shipping_address,omitempty" yaml:"shipping_address,omitempty"`
	Notes           string       `json:"notes,omitempty"            yaml:"notes,omitempty"`
	CustomFields    CustomFields `json:"custom_fields,omitempty"    yaml:"custom_fields,omitempty"`
	CreatedTime     string       `json:"created_time,omitempty"     yaml:"created_time,omitempty"`
	UpdatedTime     string       `json:"updated_time,omitempty"     yaml:"updated_time,omitempty"`
}

// ContactPerson represents an additional contact of a customer.
type ContactPerson struct {
	ContactPersonID string `json:"contactperson_id" yaml:"contactperson_id"`
	CustomerID      string `json:"customer_id"      yaml:"customer_id"`
	FirstName       string `json:"first_name"       yaml:"first_name"`
	LastName        string `json:"last_name"        yaml:"last_name"`
	Email           string `json:"email"            yaml:"email"`
	Phone           string `json:"phone,omitempty"  yaml:"phone,omitempty"`
	Mobile          string `json:"mobile,omitempty" yaml:"mobile,omitempty"`
}

// Card represents a stored payment card.
type Card struct {
	CardID         string `json:"card_id"                   yaml:"card_id"`
	CustomerID     string `json:"customer_id,omitempty"     yaml:"customer_id,omitempty"`
	LastFourDigits string `json:"last_four_digits"          yaml:"last_four_digits"`
	ExpiryMonth    int    `json:"expiry_month"              yaml:"expiry_month"`
	ExpiryYear     int    `json:"expiry_year"               yaml:"expiry_year"`
	PaymentGateway string `json:"payment_gateway,omitempty" yaml:"payment_gateway,omitempty"`
	FirstName      string `json:"first_name,omitempty"      yaml:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"       yaml:"last_name,omitempty"`
	Status         string `json:"status,omitempty"          yaml:"status,omitempty"`
}

// Plan represents a subscription plan.
type Plan struct {
	PlanCode       string  `json:"plan_code"               yaml:"plan_code"`
	Name           string  `json:"name"                    yaml:"name"`
	RecurringPrice float64 `json:"recurring_price"         yaml:"recurring_price"`
	Interval       int     `json:"interval"                yaml:"interval"`
	IntervalUnit   string  `json:"interval_unit"           yaml:"interval_unit"`
	BillingCycles  int     `json:"billing_cycles"          yaml:"billing_cycles"`
	TrialPeriod    int     `json:"trial_period"            yaml:"trial_period"`
	SetupFee       float64 `json:"setup_fee"               yaml:"setup_fee"`
	ProductID      string  `json:"product_id"              yaml:"product_id"`
	TaxID          string  `json:"tax_id,omitempty"        yaml:"tax_id,omitempty"`
	Status         string  `json:"status,omitempty"        yaml:"status,omitempty"`
	Description    string  `json:"description,omitempty"   yaml:"description,omitempty"`
	Quantity       int     `json:"quantity,omitempty"      yaml:"quantity,omitempty"`
	Price          float64 `json:"price,omitempty"         yaml:"price,omitempty"`
	ExcludeTrial   bool    `json:"exclude_trial,omitempty" yaml:"exclude_trial,omitempty"`
	CreatedTime    string  `json:"created_time,omitempty"  yaml:"created_time,omitempty"`
}

// PriceBracket is one tier of a tiered addon price.
type PriceBracket struct {
	StartQuantity int     `json:"start_quantity"         yaml:"start_quantity"`
	EndQuantity   int     `json:"end_quantity,omitempty" yaml:"end_quantity,omitempty"`
	Price         float64 `json:"price"                  yaml:"price"`
}

// Addon represents a plan addon.
type Addon struct {
	AddonCode            string         `json:"addon_code"               yaml:"addon_code"`
	Name                 string         `json:"name"                     yaml:"name"`
	UnitName             string         `json:"unit_name,omitempty"      yaml:"unit_name,omitempty"`
	PricingScheme        string         `json:"pricing_scheme,omitempty" yaml:"pricing_scheme,omitempty"`
	PriceBrackets        []PriceBracket `json:"price_brackets,omitempty" yaml:"price_brackets,omitempty"`
	Type                 string         `json:"type,omitempty"           yaml:"type,omitempty"`
	IntervalUnit         string         `json:"interval_unit,omitempty"  yaml:"interval_unit,omitempty"`
	ApplicableToAllPlans bool           `json:"applicable_to_all_plans"  yaml:"applicable_to_all_plans"`
	Plans                []Plan         `json:"plans,omitempty"          yaml:"plans,omitempty"`
	ProductID            string         `json:"product_id,omitempty"     yaml:"product_id,omitempty"`
	Description          string         `json:"description,omitempty"    yaml:"description,omitempty"`
	Status               string         `json:"status,omitempty"         yaml:"status,omitempty"`
	Quantity             int            `json:"quantity,omitempty"       yaml:"quantity,omitempty"`
	Price                float64        `json:"price,omitempty"          yaml:"price,omitempty"`
}

// Coupon represents a discount coupon.
type Coupon struct {
	CouponCode    string  `json:"coupon_code"               yaml:"coupon_code"`
	Name          string  `json:"name"                      yaml:"name"`
	Description   string  `json:"description,omitempty"     yaml:"description,omitempty"`
	Type          string  `json:"type,omitempty"            yaml:"type,omitempty"`
	DiscountBy    string  `json:"discount_by,omitempty"     yaml:"discount_by,omitempty"`
	DiscountValue float64 `json:"discount_value,omitempty"  yaml:"discount_value,omitempty"`
	MaxRedemption int     `json:"max_redemption,omitempty"  yaml:"max_redemption,omitempty"`
	ExpiryAt      string  `json:"expiry_at,omitempty"       yaml:"expiry_at,omitempty"`
	ProductID     string  `json:"product_id,omitempty"      yaml:"product_id,omitempty"`
	ApplyToPlans  string  `json:"apply_to_plans,omitempty"  yaml:"apply_to_plans,omitempty"`
	ApplyToAddons string  `json:"apply_to_addons,omitempty" yaml:"apply_to_addons,omitempty"`
	Status        string  `json:"status,omitempty"          yaml:"status,omitempty"`
}

// Product represents a product grouping plans and addons.
type Product struct {
	ProductID   string `json:"product_id"             yaml:"product_id"`
	Name        string `json:"name"                   yaml:"name"`
	Description string `json:"description,omitempty"  yaml:"description,omitempty"`
	EmailIDs    string `json:"email_ids,omitempty"    yaml:"email_ids,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty" yaml:"redirect_url,omitempty"`
	Status      string `json:"status,omitempty"       yaml:"status,omitempty"`
}

// InvoicePayment applies part of a payment to an invoice.
type InvoicePayment struct {
	InvoiceID     string  `json:"invoice_id"     yaml:"invoice_id"`
	AmountApplied float64 `json:"amount_applied" yaml:"amount_applied"`
}

// Payment represents a recorded offline payment.
type Payment struct {
	PaymentID       string           `json:"payment_id"                 yaml:"payment_id"`
	CustomerID      string           `json:"customer_id"                yaml:"customer_id"`
	Amount          float64          `json:"amount"                     yaml:"amount"`
	Date            string           `json:"date"                       yaml:"date"`
	PaymentMode     string           `json:"payment_mode"               yaml:"payment_mode"`
	Description     string           `json:"description,omitempty"      yaml:"description,omitempty"`
	ReferenceNumber string           `json:"reference_number,omitempty" yaml:"reference_number,omitempty"`
	ExchangeRate    float64          `json:"exchange_rate,omitempty"    yaml:"exchange_rate,omitempty"`
	Invoices        []InvoicePayment `json:"invoices,omitempty"         yaml:"invoices,omitempty"`
}

// Invoice represents an invoice.
type Invoice struct {
	InvoiceID     string  `json:"invoice_id"                 yaml:"invoice_id"`
	Number        string  `json:"number"                     yaml:"number"`
	Status        string  `json:"status"                     yaml:"status"`
	InvoiceDate   string  `json:"invoice_date"               yaml:"invoice_date"`
	DueDate       string  `json:"due_date,omitempty"         yaml:"due_date,omitempty"`
	CustomerID    string  `json:"customer_id"                yaml:"customer_id"`
	CustomerName  string  `json:"customer_name,omitempty"    yaml:"customer_name,omitempty"`
	Email         string  `json:"email,omitempty"            yaml:"email,omitempty"`
	Total         float64 `json:"total"                      yaml:"total"`
	Balance       float64 `json:"balance"                    yaml:"balance"`
	CurrencyCode  string  `json:"currency_code,omitempty"    yaml:"currency_code,omitempty"`
	PaymentMade   float64 `json:"payment_made,omitempty"     yaml:"payment_made,omitempty"`
	WriteOffTotal float64 `json:"write_off_amount,omitempty" yaml:"write_off_amount,omitempty"`
}

// InvoiceEmail is the payload of an invoice email.
type InvoiceEmail struct {
	FromMailID string   `json:"from_mail_id"          yaml:"from_mail_id"`
	ToMailIDs  []string `json:"to_mail_ids"           yaml:"to_mail_ids"`
	CCMailIDs  []string `json:"cc_mail_ids,omitempty" yaml:"cc_mail_ids,omitempty"`
	Subject    string   `json:"subject"               yaml:"subject"`
	Body       string   `json:"body"                  yaml:"body"`
}

// Subscription represents a customer subscription.
type Subscription struct {
	SubscriptionID      string    `json:"subscription_id"                  yaml:"subscription_id"`
	Name                string    `json:"name,omitempty"                   yaml:"name,omitempty"`
	Status              string    `json:"status"                           yaml:"status"`
	Amount              float64   `json:"amount"                           yaml:"amount"`
	CustomerID          string    `json:"customer_id,omitempty"            yaml:"customer_id,omitempty"`
	CurrentTermStartsAt string    `json:"current_term_starts_at,omitempty" yaml:"current_term_starts_at,omitempty"`
	CurrentTermEndsAt   string    `json:"current_term_ends_at,omitempty"   yaml:"current_term_ends_at,omitempty"`
	NextBillingAt       string    `json:"next_billing_at,omitempty"        yaml:"next_billing_at,omitempty"`
	ExpiresAt           string    `json:"expires_at,omitempty"             yaml:"expires_at,omitempty"`
	ReferenceID         string    `json:"reference_id,omitempty"           yaml:"reference_id,omitempty"`
	Plan                *Plan     `json:"plan,omitempty"                   yaml:"plan,omitempty"`
	Addons              []Addon   `json:"addons,omitempty"                 yaml:"addons,omitempty"`
	Customer            *Customer `json:"customer,omitempty"               yaml:"customer,omitempty"`
	Card                *Card     `json:"card,omitempty"                   yaml:"card,omitempty"`
	Coupon              *Coupon   `json:"coupon,omitempty"                 yaml:"coupon,omitempty"`
}

// HostedPage represents a hosted checkout page.
type HostedPage struct {
	HostedPageID   string        `json:"hostedpage_id"             yaml:"hostedpage_id"`
	Status         string        `json:"status"                    yaml:"status"`
	URL            string        `json:"url"                       yaml:"url"`
	Action         string        `json:"action,omitempty"          yaml:"action,omitempty"`
	ExpiringTime   string        `json:"expiring_time,omitempty"   yaml:"expiring_time,omitempty"`
	CreatedTime    string        `json:"created_time,omitempty"    yaml:"created_time,omitempty"`
	SubscriptionID string        `json:"subscription_id,omitempty" yaml:"subscription_id,omitempty"`
	Subscription   *Subscription `json:"subscription,omitempty"    yaml:"subscription,omitempty"`
}
