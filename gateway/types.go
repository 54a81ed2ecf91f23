package gateway

// Customer holds buyer information. The IP address is always set
// explicitly by the caller; nothing here reads it from the environment.
type Customer struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	IP             string
	IdentityNumber string
}

// FullName joins the first and last name
func (c *Customer) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Address is a billing or shipping address
type Address struct {
	Address  string
	City     string
	District string
	ZipCode  string
	Country  string
}

// NewAddress returns an address with the country defaulted to Turkey
func NewAddress(address, city string) *Address {
	return &Address{
		Address: address,
		City:    city,
		Country: "Turkey",
	}
}

// CartItem is a single basket line
type CartItem struct {
	ID       string
	Name     string
	Category string
	Price    float64
	Quantity int
}

// NewCartItem returns a cart item with the quantity defaulted to 1
func NewCartItem(id, name string, price float64) *CartItem {
	return &CartItem{
		ID:       id,
		Name:     name,
		Price:    price,
		Quantity: 1,
	}
}

// Total returns price times quantity
func (i *CartItem) Total() float64 {
	qty := i.Quantity
	if qty < 1 {
		qty = 1
	}
	return i.Price * float64(qty)
}

// InstallmentInfo is one installment option for a BIN and amount
type InstallmentInfo struct {
	Count             int     `json:"count"`
	InstallmentAmount float64 `json:"installmentAmount"`
	TotalAmount       float64 `json:"totalAmount"`
	InterestRate      float64 `json:"interestRate"`
}
