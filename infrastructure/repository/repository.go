// Package repository contém as implementações dos repositórios para acesso aos dados
package repository

import (
	"errors"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrDuplicateKey é retornado quando a inserção viola uma restrição de unicidade
var ErrDuplicateKey = errors.New("registro duplicado")
