package walker

import (
	"io"
	"os"
	"sync"

	"github.com/bethropolis/repoprompt/internal/content"
)

// processFile fills in the content of one file node
func processFile(j job, options WalkOptions) {
	if options.ProgressFn != nil {
		options.ProgressFn(ProgressStats{CurrentFilePath: j.relativePath})
	}

	node := j.node
	if options.BinaryExtensions.Match(node.Name) {
		node.Content = content.Binary(node.Name)
		if info, err := os.Stat(j.path); err == nil {
			node.Size = info.Size()
		}
		return
	}

	f, err := os.Open(j.path)
	if err != nil {
		options.Logger.Warn("processFile [%s]: %v", j.relativePath, err)
		node.Content = content.ReadError(node.Name)
		return
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil {
		node.Size = info.Size()
		if info.Size() > options.MaxFileSize {
			options.Logger.Debug("processFile [%s]: exceeds size limit (%d > %d bytes)",
				j.relativePath, info.Size(), options.MaxFileSize)
			node.Content = content.TooLarge(info.Size())
			return
		}
	}

	data, err := io.ReadAll(io.LimitReader(f, options.MaxFileSize+1))
	if err != nil {
		options.Logger.Warn("processFile [%s]: failed to read file: %v", j.relativePath, err)
		node.Content = content.ReadError(node.Name)
		return
	}

	options.Logger.Debug("processFile [%s]: read %d bytes", j.relativePath, len(data))
	node.Content = content.Decode(node.Name, data, options.MaxFileSize)
}

// fileProcessorWorker drains jobs until the channel closes or the context ends
func fileProcessorWorker(id int, jobs <-chan job, wg *sync.WaitGroup, options WalkOptions) {
	defer wg.Done()
	options.Logger.Debug("Worker %d: Started", id)

	for j := range jobs {
		select {
		case <-options.Context.Done():
			options.Logger.Debug("Worker %d: Received cancellation signal", id)
			return
		default:
			processFile(j, options)
		}
	}

	options.Logger.Debug("Worker %d: Finished", id)
}
