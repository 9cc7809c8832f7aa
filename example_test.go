// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package codec_test

import (
	"fmt"
	"strings"

	"rivaas.dev/codec"
)

func ExampleEngine_Marshal() {
	type User struct {
		Name  string `json:"name"`
		Email string `json:"email,omitempty"`
	}

	e := codec.MustNew()
	data, _ := e.Marshal(User{Name: "Ada"})
	fmt.Println(string(data))
	// Output: {"name":"Ada"}
}

func ExampleUnmarshal() {
	e := codec.MustNew()
	tags, _ := codec.Unmarshal[[]string](e, []byte(`["go","json"]`))
	fmt.Println(tags)
	// Output: [go json]
}

func ExampleWithNamingPolicy() {
	type Server struct {
		ListenAddr string
		MaxClients int
	}

	e := codec.MustNew(codec.WithNamingPolicy(codec.SnakeCaseNaming))
	data, _ := e.Marshal(Server{ListenAddr: ":8080", MaxClients: 64})
	fmt.Println(string(data))
	// Output: {"listen_addr":":8080","max_clients":64}
}

func ExampleWithTypeAdapter() {
	type Level int

	e := codec.MustNew(codec.WithTypeAdapter(
		func(r codec.Reader) (Level, error) {
			s, err := r.NextString()
			if err != nil {
				return 0, err
			}
			if s == "debug" {
				return Level(-1), nil
			}
			return Level(0), nil
		},
		func(w codec.Writer, v Level) error {
			if v < 0 {
				return w.WriteString("debug")
			}
			return w.WriteString("info")
		},
	))

	data, _ := codec.Marshal(e, Level(-1))
	fmt.Println(string(data))
	// Output: "debug"
}

func ExampleNewReader() {
	doc := `
	// lenient readers accept comments and unquoted names
	{host: 'localhost', port: 5432,}`

	r := codec.NewReader(strings.NewReader(doc))
	n, _ := codec.ReadNode(r)

	var b strings.Builder
	w := codec.NewWriter(&b)
	_ = codec.WriteNode(w, n)
	_ = w.Flush()
	fmt.Println(b.String())
	// Output: {"host":"localhost","port":5432}
}

func ExampleEngine_ToTree() {
	type Point struct {
		X int `json:"x"`
		Y int `json:"y"`
	}

	e := codec.MustNew()
	n, _ := e.ToTree(Point{X: 1, Y: 2})
	obj := n.(*codec.ObjectNode)
	x, _ := obj.Get("x")
	fmt.Println(obj.Names(), x)
	// Output: [x y] 1
}
