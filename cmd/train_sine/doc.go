// Binary train_sine gradient-trains a small connected network on the sine
// regression dataset and optionally saves or resumes a binary checkpoint.
package main
