package nananiji_test

import (
	"context"
	"fmt"

	nananiji "github.com/komori-n/nananiji-calculator"
	"github.com/komori-n/nananiji-calculator/blobstore"
)

func Example() {
	ctx := context.Background()

	gen, err := nananiji.FromLists(ctx, [][]int64{{7}, {3}}, nananiji.WithSearchDepth(1))
	if err != nil {
		panic(err)
	}

	for _, n := range []int64{21, 10, 4} {
		expr, err := gen.Generate(n)
		if err != nil {
			panic(err)
		}
		fmt.Println(expr, "=", n)
	}
	// Output:
	// 3*7 = 21
	// (7+3) = 10
	// (7-3) = 4
}

func ExampleLoad() {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	gen, err := nananiji.FromLists(ctx, [][]int64{{7}, {3}}, nananiji.WithSearchDepth(1))
	if err != nil {
		panic(err)
	}
	if err := gen.Save(ctx, store, "seven_three.bin"); err != nil {
		panic(err)
	}

	loaded, err := nananiji.Load(ctx, store, "seven_three.bin")
	if err != nil {
		panic(err)
	}
	fmt.Println(loaded.MustGenerate(63))
	// Output:
	// 3*3*7
}
