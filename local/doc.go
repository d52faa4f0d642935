// Package local provides the resident model runtime backend.
//
// The model is loaded once by a long-lived runner process and stays resident
// for the life of the Go process; every completion reuses the loaded handle.
// The runner is typically a small Python script wrapping llama-cpp-python, so
// a GGUF model can be served without cgo bindings. One is bundled: when no
// runner path is configured, runner/llama_runner.py is installed under the
// user cache directory and started with the configured Python (which needs
// "pip install llama-cpp-python").
//
// # Architecture
//
//	Go Client <--JSON-RPC/stdio--> Runner process <--> Loaded model
//
// The runner is started lazily on the first request. If it exits, the next
// request starts a fresh one.
//
// # JSON-RPC Protocol
//
// Newline-delimited JSON-RPC 2.0 over the runner's stdin/stdout:
//
//	-> {"jsonrpc":"2.0","method":"init","params":{"model_path":"...","n_ctx":4096,"n_gpu_layers":-1},"id":1}
//	<- {"jsonrpc":"2.0","result":{"ready":true,"version":"0.2.90"},"id":1}
//
//	-> {"jsonrpc":"2.0","method":"complete","params":{"prompt":"...","max_tokens":200,"stop":["</s>"]},"id":2}
//	<- {"jsonrpc":"2.0","result":{"choices":[{"text":"...","finish_reason":"stop"}]},"id":2}
//
//	-> {"jsonrpc":"2.0","method":"shutdown","id":3}
//	<- {"jsonrpc":"2.0","result":{"success":true},"id":3}
//
// The runner may emit "log" notifications at any time; they are forwarded to
// slog at debug level. Lines that are not JSON (model loaders printing banners
// to stdout) are skipped.
//
// # Usage
//
//	import _ "github.com/randalmurphal/summarize/local"
//
//	client, err := provider.New("local", provider.Config{
//	    ModelPath: "/models/mistral-7b-instruct-v0.1.Q4_K_M.gguf",
//	})
//
// Direct instantiation:
//
//	client := local.NewClient(
//	    local.WithRunnerPath("/opt/summarize/my_runner.py"),
//	    local.WithModelPath("/models/mistral.gguf"),
//	)
//	defer client.Close()
package local
