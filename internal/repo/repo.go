package repo

import (
	"github.com/dsolovey/gomarket/internal/pg"
	orderrepo "github.com/dsolovey/gomarket/internal/repo/order-repo"
	productrepo "github.com/dsolovey/gomarket/internal/repo/product-repo"
	sequencerepo "github.com/dsolovey/gomarket/internal/repo/sequence-repo"
	userrepo "github.com/dsolovey/gomarket/internal/repo/user-repo"
)

type Repositories struct {
	UserRepo     *userrepo.Repository
	OrderRepo    *orderrepo.Repository
	ProductRepo  *productrepo.Repository
	SequenceRepo *sequencerepo.Repository
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	return &Repositories{
		UserRepo:     userrepo.New(conn),
		OrderRepo:    orderrepo.New(conn, txManager),
		ProductRepo:  productrepo.New(conn),
		SequenceRepo: sequencerepo.New(conn),
	}
}
