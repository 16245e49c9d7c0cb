// cmd/seeduser/main.go — Crea los datos mínimos de demo: empresa emisora,
// almacén, sucursal y usuario administrador.
// Uso: go run cmd/seeduser/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"andespos/internal/infra"
	"andespos/internal/model"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "andespos:andespos@tcp(mysql:3306)/andespos?charset=utf8mb4&parseTime=True&loc=Local"
	}

	db, err := infra.NewDatabase(dsn)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	ctx := context.Background()

	empresa := model.Empresa{
		RUC:             "20000000001",
		RazonSocial:     "ANDESPOS DEMO S.A.C.",
		NombreComercial: "AndesPOS Demo",
		Direccion:       "Av. Demo 123",
		Departamento:    "LIMA",
		Provincia:       "LIMA",
		Distrito:        "LIMA",
		Ubigeo:          "150101",
		CodLocal:        "0000",
	}
	if err := db.WithContext(ctx).Where("ruc = ?", empresa.RUC).FirstOrCreate(&empresa).Error; err != nil {
		log.Fatalf("empresa seed error: %v", err)
	}

	almacen := model.Almacen{Nombre: "Almacén Principal"}
	if err := db.WithContext(ctx).Where("nombre = ?", almacen.Nombre).FirstOrCreate(&almacen).Error; err != nil {
		log.Fatalf("almacen seed error: %v", err)
	}

	sucursal := model.Sucursal{Nombre: "Sucursal Principal", AlmacenID: almacen.ID, Activo: true}
	if err := db.WithContext(ctx).Where("nombre = ?", sucursal.Nombre).FirstOrCreate(&sucursal).Error; err != nil {
		log.Fatalf("sucursal seed error: %v", err)
	}

	username := "admin"
	password := "1234"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatalf("bcrypt error: %v", err)
	}

	usuario := model.Usuario{
		Username:     username,
		PasswordHash: string(hash),
		Nombres:      "Admin",
		Apellidos:    "Demo",
		Rol:          "administrador",
		SucursalID:   sucursal.ID,
		Activo:       true,
	}
	result := db.WithContext(ctx).Where("username = ?", username).FirstOrCreate(&usuario)
	if result.Error != nil {
		log.Fatalf("usuario seed error: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		// Ya existía: renueva credenciales y estado.
		err = db.WithContext(ctx).Model(&usuario).
			Updates(map[string]interface{}{"password_hash": string(hash), "rol": "administrador", "activo": true}).Error
		if err != nil {
			log.Fatalf("usuario update error: %v", err)
		}
	}

	fmt.Printf("✅ Usuario '%s' creado/actualizado con password '%s'\n", username, password)
}
