package hier_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestHier(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Hier Suite")
}
